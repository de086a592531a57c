package enrich

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ImageStore persists resolved image URLs keyed by hotel name.
type ImageStore interface {
	Get(ctx context.Context, hotelName string) (url string, ok bool, err error)
	Put(ctx context.Context, hotelName, url string) error
}

// CSVImageStore keeps the cache as a two-column CSV file that several
// processes may share. Reads reload the file whenever it changed on disk.
// Writes take an exclusive lock on a sidecar ".lock" file, re-read the file,
// merge the new entry and replace the file through a temp file and rename.
type CSVImageStore struct {
	path string

	mu      sync.Mutex
	stamp   fileStamp
	order   []string
	entries map[string]string
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func NewCSVImageStore(path string) *CSVImageStore {
	return &CSVImageStore{path: path, entries: make(map[string]string)}
}

func (s *CSVImageStore) Get(ctx context.Context, hotelName string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(); err != nil {
		return "", false, err
	}
	url, ok := s.entries[hotelName]
	return url, ok, nil
}

func (s *CSVImageStore) Put(ctx context.Context, hotelName, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile()
	if err != nil {
		return err
	}
	defer unlock()

	order, entries, err := readImageCache(s.path)
	if err != nil {
		return err
	}
	if _, exists := entries[hotelName]; !exists {
		order = append(order, hotelName)
	}
	entries[hotelName] = url

	if err := writeImageCache(s.path, order, entries); err != nil {
		return err
	}
	s.order, s.entries = order, entries
	s.stamp, _ = statImageCache(s.path)
	return nil
}

// refreshLocked reloads the file if another writer replaced it, creating it
// with a header when it does not exist yet.
func (s *CSVImageStore) refreshLocked() error {
	stamp, err := statImageCache(s.path)
	if errors.Is(err, os.ErrNotExist) {
		unlock, err := s.lockFile()
		if err != nil {
			return err
		}
		defer unlock()
		if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
			if err := writeImageCache(s.path, nil, nil); err != nil {
				return err
			}
		}
		stamp, err = statImageCache(s.path)
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if stamp == s.stamp {
		return nil
	}

	order, entries, err := readImageCache(s.path)
	if err != nil {
		return err
	}
	s.order, s.entries, s.stamp = order, entries, stamp
	return nil
}

func (s *CSVImageStore) lockFile() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image cache dir: %w", err)
	}
	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open image cache lock: %w", err)
	}
	if err := flock(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to lock image cache: %w", err)
	}
	return func() {
		_ = funlock(f)
		f.Close()
	}, nil
}

func statImageCache(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}

// readImageCache parses the cache file. A missing file is an empty cache.
func readImageCache(path string) ([]string, map[string]string, error) {
	entries := make(map[string]string)
	var order []string

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return order, entries, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image cache: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read image cache: %w", err)
		}
		if first {
			first = false
			if len(record) > 0 && record[0] == "hotel_name" {
				continue
			}
		}
		if len(record) < 2 || record[0] == "" {
			continue
		}
		// first entry wins, matching a lookup that takes the first matching row
		if _, exists := entries[record[0]]; !exists {
			order = append(order, record[0])
			entries[record[0]] = record[1]
		}
	}
	return order, entries, nil
}

func writeImageCache(path string, order []string, entries map[string]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create image cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".image-cache-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create image cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	_ = w.Write([]string{"hotel_name", "image_url"})
	for _, name := range order {
		_ = w.Write([]string{name, entries[name]})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write image cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write image cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace image cache: %w", err)
	}
	return nil
}

const redisImageKey = "hotel_images"

// RedisImageStore keeps the cache in a single Redis hash.
type RedisImageStore struct {
	rdb *redis.Client
	key string
}

func NewRedisImageStore(rdb *redis.Client) *RedisImageStore {
	return &RedisImageStore{rdb: rdb, key: redisImageKey}
}

func (s *RedisImageStore) Get(ctx context.Context, hotelName string) (string, bool, error) {
	url, err := s.rdb.HGet(ctx, s.key, hotelName).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

func (s *RedisImageStore) Put(ctx context.Context, hotelName, url string) error {
	return s.rdb.HSet(ctx, s.key, hotelName, url).Err()
}

// NewImageStore picks the cache backend by name. The redis backend needs rdb.
func NewImageStore(backend, csvPath string, rdb *redis.Client) (ImageStore, error) {
	switch backend {
	case "", "csv":
		return NewCSVImageStore(csvPath), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis image cache requires a redis connection")
		}
		return NewRedisImageStore(rdb), nil
	}
	return nil, fmt.Errorf("unknown image cache backend %q", backend)
}
