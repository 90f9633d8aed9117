package gameconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// ErrTableNotFound 数据目录与内置默认表中都不存在
var ErrTableNotFound = errors.New("gameconfig: table not found")

// Origin 表数据来源
type Origin string

const (
	OriginFile     Origin = "file"
	OriginEmbedded Origin = "embedded"
)

// Source JSON 数据表来源：数据目录中的 <table>.json 优先，缺失时回退到内置默认表
type Source struct {
	dir      string
	fallback fs.FS
	logger   logger.Logger
	debounce time.Duration
}

// NewSource 创建数据表来源，dir 为空时只使用内置表
func NewSource(dir string, fallback fs.FS, l logger.Logger) *Source {
	if l == nil {
		l = logger.Default()
	}
	return &Source{
		dir:      dir,
		fallback: fallback,
		logger:   l.Named("gameconfig"),
		debounce: 200 * time.Millisecond,
	}
}

// Load 读取并严格解码一张表（未知字段视为错误）
func (s *Source) Load(table string, v any) (Origin, error) {
	data, origin, err := s.read(table)
	if err != nil {
		return "", err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return "", errors.Wrapf(err, "decode table %s (%s)", table, origin)
	}
	return origin, nil
}

func (s *Source) read(table string) ([]byte, Origin, error) {
	fileName := table + ".json"

	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, fileName))
		switch {
		case err == nil:
			return data, OriginFile, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, "", errors.Wrapf(err, "read table %s", table)
		}
		s.logger.Debug("table file not found, using embedded default", "table", table, "dir", s.dir)
	}

	if s.fallback != nil {
		data, err := fs.ReadFile(s.fallback, fileName)
		if err == nil {
			return data, OriginEmbedded, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", errors.Wrapf(err, "read embedded table %s", table)
		}
	}
	return nil, "", errors.Wrapf(ErrTableNotFound, "table=%s", table)
}

// Watch 监听数据目录中 *.json 的变更，去抖后以表名回调，阻塞直到 ctx 结束
func (s *Source) Watch(ctx context.Context, onChange func(tables []string)) error {
	if s.dir == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return errors.Wrapf(err, "watch %s", s.dir)
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".json") || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending[strings.TrimSuffix(filepath.Base(ev.Name), ".json")] = struct{}{}
			timer.Reset(s.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("table watcher error", "error", err)
		case <-timer.C:
			tables := make([]string, 0, len(pending))
			for t := range pending {
				tables = append(tables, t)
			}
			clear(pending)
			onChange(tables)
		}
	}
}
