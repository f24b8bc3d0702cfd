//go:build with_libav

package hwdec

import (
	_ "github.com/xaionaro-go/hwdec/driver/libav"
)
