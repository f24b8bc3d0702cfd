//go:build !unix

package hwdec

const eagain = int32(11)
