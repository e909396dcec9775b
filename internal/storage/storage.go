package storage

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/multierr"
)

// ErrObjectNotFound 表示对象不存在。Delete 的实现应当把它视为成功。
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore abstracts the hosted object storage.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// DeletePrefix 删除 prefix 下的全部对象。删除并发执行且无顺序保证，
// 已不存在的对象视为删除成功，部分失败时返回合并后的错误，不做回滚。
func DeletePrefix(ctx context.Context, store ObjectStore, prefix string) (int, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted int
		errs    error
	)
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			err := store.Delete(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && !errors.Is(err, ErrObjectNotFound) {
				errs = multierr.Append(errs, err)
				return
			}
			deleted++
		}(key)
	}
	wg.Wait()

	return deleted, errs
}
