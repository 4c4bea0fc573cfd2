package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type UploadInput struct {
	Key         string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Service 对象存储，PutObject 返回可公开访问的 URL
type Service interface {
	PutObject(ctx context.Context, in UploadInput) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type Object struct {
	ContentType string
	Data        []byte
}

// Memory 进程内对象存储，本地开发与测试使用
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: strings.TrimRight(baseURL, "/"), objects: map[string]Object{}}
}

func (m *Memory) PutObject(_ context.Context, in UploadInput) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, in.Body); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[in.Key] = Object{ContentType: in.ContentType, Data: buf.Bytes()}
	m.mu.Unlock()
	return fmt.Sprintf("%s/%s", m.baseURL, strings.TrimLeft(in.Key, "/")), nil
}

func (m *Memory) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}

var _ Service = (*Memory)(nil)
