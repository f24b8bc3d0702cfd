package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/hwdec"
	"github.com/xaionaro-go/hwdec/bitstream/annexb"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/driver/simulated"
	"github.com/xaionaro-go/hwdec/manager"
	"github.com/xaionaro-go/hwdec/statusapi"
	"github.com/xaionaro-go/hwdec/types"
	"github.com/xaionaro-go/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	manifestPath := pflag.String("manifest", "", "path to the device manifest; a simulated device is used if empty")
	engines := pflag.Uint("engines", 2, "the amount of engines per decoder kind of the simulated device (if no manifest is given)")
	streams := pflag.Uint("streams", 1, "the amount of concurrent decode sessions to run")
	frames := pflag.Int("frames", 300, "the amount of pictures in the synthetic stream")
	gop := pflag.Int("gop", 30, "the key frame interval of the synthetic stream")
	kindString := pflag.String("kind", "h264", "decoder kind: h264 or hevc")
	inputPath := pflag.String("input", "", "an Annex-B file to decode instead of the synthetic stream")
	chunkSize := pflag.Int("chunk-size", 4096, "the size of chunks submitted at once")
	blocking := pflag.Bool("blocking", true, "use blocking submits")
	vendorTag := pflag.String("vendor", "Xilinx", "the vendor tag of the decoder requests")
	statusAddr := pflag.String("status-listen-addr", "", "an address to serve the status API at")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()
	if len(pflag.Args()) != 0 || *chunkSize <= 0 {
		pflag.Usage()
		os.Exit(1)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	kind, err := types.DecoderKindFromString(*kindString)
	if err != nil {
		l.Fatal(err)
	}

	var data []byte
	if *inputPath != "" {
		data, err = os.ReadFile(*inputPath)
		if err != nil {
			l.Fatal(err)
		}
	} else {
		codec, err := annexb.CodecFromDecoderKind(kind)
		if err != nil {
			l.Fatal(err)
		}
		data = annexb.Generate(codec, *frames, *gop)
	}

	if *manifestPath != "" {
		err = hwdec.Initialize(ctx, *manifestPath)
	} else {
		err = initSimulated(ctx, *engines)
	}
	if err != nil {
		l.Fatal(err)
	}
	defer func() {
		if err := hwdec.Teardown(ctx); err != nil {
			l.Error(err)
		}
	}()

	mgr, err := hwdec.Default(ctx)
	if err != nil {
		l.Fatal(err)
	}
	if *statusAddr != "" {
		observability.Go(ctx, func(ctx context.Context) {
			l.Error(http.ListenAndServe(*statusAddr, statusapi.NewRouter(ctx, mgr)))
		})
	}

	req := types.DecoderRequest{
		Kind:      kind,
		VendorTag: *vendorTag,
	}
	results := make([]streamResult, *streams)
	var resultsLocker sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	startedAt := time.Now()
	for idx := range results {
		g.Go(func() error {
			r := runStream(gctx, mgr, req, data, *chunkSize, *blocking)
			resultsLocker.Lock()
			results[idx] = r
			resultsLocker.Unlock()
			return r.Err
		})
	}
	err = g.Wait()

	for idx, r := range results {
		fmt.Printf("stream #%d: %s\n", idx, r)
	}
	fmt.Printf("total: %d streams in %v\n", len(results), time.Since(startedAt).Round(time.Millisecond))
	if err != nil {
		l.Error(err)
		os.Exit(1)
	}
}

func initSimulated(
	ctx context.Context,
	engines uint,
) error {
	drv, err := simulated.New(ctx, driver.Config{
		DeviceName: "simulated0",
		Engines: map[types.DecoderKind]uint{
			types.DecoderKindH264: engines,
			types.DecoderKindHEVC: engines,
		},
	})
	if err != nil {
		return err
	}
	mgr, err := manager.New(ctx, drv, manager.DefaultConfig())
	if err != nil {
		return err
	}
	return hwdec.InitializeWithManager(ctx, mgr)
}
