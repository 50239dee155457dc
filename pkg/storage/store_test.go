package storage

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/abhisheknishant138/scope/internal/errors"
)

// exerciseStore runs the common Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want not found", ok, err)
	}

	if err := s.Set(ctx, "scopeViewState", `{"topologyId":"hosts"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(ctx, "scopeViewState")
	if err != nil || !ok || v != `{"topologyId":"hosts"}` {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	if err := s.Set(ctx, "scopeViewState", "{}"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, _, _ := s.Get(ctx, "scopeViewState"); v != "{}" {
		t.Errorf("after overwrite Get = %q, want {}", v)
	}

	if err := s.Set(ctx, "scopeViewState", ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if v, _, _ := s.Get(ctx, "scopeViewState"); v != "" {
		t.Errorf("after clear Get = %q, want empty", v)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.db")
	s, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	exerciseStore(t, s)

	if err := s.Set(context.Background(), "k", "persisted"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if v, ok, _ := reopened.Get(context.Background(), "k"); !ok || v != "persisted" {
		t.Errorf("after reopen Get = %q, %v", v, ok)
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := OpenSQLite(ctx, ":memory:")
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		defer s.Close()
		exerciseStore(t, s)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scope.sqlite")
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		exerciseStore(t, s)
		if err := s.Set(ctx, "k", "persisted"); err != nil {
			t.Fatal(err)
		}
		s.Close()

		reopened, err := OpenSQLite(ctx, path)
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		defer reopened.Close()
		if v, ok, _ := reopened.Get(ctx, "k"); !ok || v != "persisted" {
			t.Errorf("after reopen Get = %q, %v", v, ok)
		}
	})
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}}
	s := NewS3Store(fake, "views", "scope/")
	exerciseStore(t, s)

	if _, ok := fake.objects["views/scope/scopeViewState"]; !ok {
		t.Errorf("object keys = %v, want views/scope/scopeViewState", fake.objects)
	}

	fake.putErr = stderrors.New("access denied")
	err := s.Set(context.Background(), "k", "v")
	if errors.Code(err) != "E110" {
		t.Errorf("Set error code = %q, want E110 (err %v)", errors.Code(err), err)
	}
}

func TestPrefixed(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	a := Prefixed(inner, SessionPrefix("a"))
	b := Prefixed(inner, SessionPrefix("b"))

	if err := a.Set(ctx, "scopeViewState", "from-a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := b.Get(ctx, "scopeViewState"); ok {
		t.Error("session b sees session a's value")
	}
	if v, ok, _ := inner.Get(ctx, "session/a/scopeViewState"); !ok || v != "from-a" {
		t.Errorf("inner Get = %q, %v", v, ok)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		opts     Options
		wantCode string
	}{
		{"default memory", Options{}, ""},
		{"memory", Options{Backend: "Memory"}, ""},
		{"bolt", Options{Backend: BackendBolt, Path: filepath.Join(t.TempDir(), "b.db")}, ""},
		{"sqlite", Options{Backend: BackendSQLite, Path: ":memory:"}, ""},
		{"s3 without bucket", Options{Backend: BackendS3}, "E112"},
		{"unknown", Options{Backend: "redis"}, "E112"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantCode != "" {
				if errors.Code(err) != tt.wantCode {
					t.Fatalf("Open error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			exerciseStore(t, s)
		})
	}
}

func TestNewS3Client(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_REGION", "us-east-1")

	ctx := context.Background()
	client, err := NewS3Client(ctx, "eu-west-2", "http://localhost:9000")
	if err != nil {
		t.Fatalf("NewS3Client: %v", err)
	}
	o := client.Options()
	if o.Region != "eu-west-2" {
		t.Errorf("region = %q, want eu-west-2", o.Region)
	}
	if o.BaseEndpoint == nil || *o.BaseEndpoint != "http://localhost:9000" || !o.UsePathStyle {
		t.Errorf("endpoint = %v, path style = %v", o.BaseEndpoint, o.UsePathStyle)
	}
	creds, err := o.Credentials.Retrieve(ctx)
	if err != nil {
		t.Fatalf("retrieving credentials: %v", err)
	}
	if creds.AccessKeyID != "AKIDEXAMPLE" {
		t.Errorf("access key = %q, want the environment's", creds.AccessKeyID)
	}

	client, err = NewS3Client(ctx, "", "")
	if err != nil {
		t.Fatalf("NewS3Client: %v", err)
	}
	if o := client.Options(); o.Region != "us-east-1" || o.BaseEndpoint != nil || o.UsePathStyle {
		t.Errorf("default options = region %q, endpoint %v, path style %v", o.Region, o.BaseEndpoint, o.UsePathStyle)
	}

	s, err := Open(ctx, Options{Backend: BackendS3, Bucket: "views", Region: "eu-west-2"})
	if err != nil {
		t.Fatalf("Open s3: %v", err)
	}
	if _, ok := s.(*S3Store); !ok {
		t.Errorf("Open s3 = %T, want *S3Store", s)
	}
}
