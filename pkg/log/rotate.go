package log

import (
	"net/url"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

const rotateScheme = "rotate"

func init() {
	if err := zap.RegisterSink(rotateScheme, newRotateSink); err != nil {
		panic(err)
	}
}

// rotateSink adapts a lumberjack.Logger to zap.Sink.
type rotateSink struct {
	*lumberjack.Logger
}

func (rotateSink) Sync() error { return nil }

func newRotateSink(u *url.URL) (zap.Sink, error) {
	q := u.Query()
	return rotateSink{&lumberjack.Logger{
		Filename:   u.Path,
		MaxSize:    atoi(q.Get("max-size")),
		MaxBackups: atoi(q.Get("max-backups")),
		MaxAge:     atoi(q.Get("max-age")),
		Compress:   q.Get("compress") == "true",
	}}, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// sinkPaths maps file outputs to the rotate sink and passes stdout/stderr through.
func (o *Options) sinkPaths() []string {
	if len(o.OutputPaths) == 0 {
		return []string{"stdout"}
	}

	paths := make([]string, 0, len(o.OutputPaths))
	for _, p := range o.OutputPaths {
		if p == "stdout" || p == "stderr" || o.Rotate == nil {
			paths = append(paths, p)
			continue
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}

		q := url.Values{}
		q.Set("max-size", strconv.Itoa(o.Rotate.MaxSize))
		q.Set("max-backups", strconv.Itoa(o.Rotate.MaxBackups))
		q.Set("max-age", strconv.Itoa(o.Rotate.MaxAge))
		q.Set("compress", strconv.FormatBool(o.Rotate.Compress))
		u := url.URL{Scheme: rotateScheme, Path: abs, RawQuery: q.Encode()}
		paths = append(paths, u.String())
	}
	return paths
}
