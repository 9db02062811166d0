package backup

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func validConfig() Config {
	return Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "passphrase",
	}
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(Config{}, nil, nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}
	if m.Enabled() {
		t.Error("expected manager to be disabled")
	}

	// With S3 config and passphrase -> idle
	m2 := NewManager(validConfig(), nil, nil)
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
	if !m2.Enabled() {
		t.Error("expected manager to be enabled")
	}
}

func TestManagerMissingPassphraseDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Passphrase = ""
	m := NewManager(cfg, nil, nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}
}

func TestManagerRetentionDefault(t *testing.T) {
	m := NewManager(Config{}, nil, nil)
	if m.cfg.RetentionDays != 30 {
		t.Errorf("retention = %d, want 30", m.cfg.RetentionDays)
	}

	cfg := Config{RetentionDays: 7}
	m2 := NewManager(cfg, nil, nil)
	if m2.cfg.RetentionDays != 7 {
		t.Errorf("retention = %d, want 7", m2.cfg.RetentionDays)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(validConfig(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil)

	ctx := context.Background()
	m.Start(ctx) // no-op when disabled

	// Stop should not block
	m.Stop()
}

func TestRunNowUnconfigured(t *testing.T) {
	m := NewManager(Config{}, nil, nil)

	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected error when backup is not configured")
	}
}

func TestDownloadUnconfigured(t *testing.T) {
	m := NewManager(Config{}, nil, nil)

	if _, _, err := m.Download(context.Background(), 1); err == nil {
		t.Fatal("expected error when backup is not configured")
	}
}

func TestCleanupUnconfiguredNoop(t *testing.T) {
	m := NewManager(Config{}, nil, nil)

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup on disabled manager: %v", err)
	}
}

func TestMockS3RoundTrip(t *testing.T) {
	mock := newMockS3()
	ctx := context.Background()

	key := "backups/test-key"
	bucket := "test"
	_, err := mock.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   strings.NewReader("payload"),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	out, err := mock.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(out.Body)
	if string(data) != "payload" {
		t.Errorf("payload = %q, want %q", data, "payload")
	}

	if _, err := mock.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := mock.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key}); err == nil {
		t.Fatal("expected NoSuchKey after delete")
	}
}
