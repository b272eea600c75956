package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"healthetl/internal/etlerr"
)

type fakeS3 struct {
	body string
	err  error
	in   *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestObjectOpen(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{body: "Name,Age\n"}
	src := NewObject(fake, "billing", "in/healthcare.csv")
	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "Name,Age\n" {
		t.Fatalf("body = %q", b)
	}
	if *fake.in.Bucket != "billing" || *fake.in.Key != "in/healthcare.csv" {
		t.Fatalf("request = %+v", fake.in)
	}
	if src.String() != "s3://billing/in/healthcare.csv" {
		t.Fatalf("String() = %q", src.String())
	}
}

func TestObjectOpen_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		wantNotFound bool
	}{
		{"no such key", &types.NoSuchKey{}, true},
		{"no such bucket", &types.NoSuchBucket{}, true},
		{"other failure", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewObject(&fakeS3{err: tt.err}, "b", "k").Open(context.Background())
			if err == nil {
				t.Fatalf("Open() error = nil")
			}
			if got := errors.Is(err, etlerr.ErrNotFound); got != tt.wantNotFound {
				t.Fatalf("errors.Is(ErrNotFound) = %v, want %v (%v)", got, tt.wantNotFound, err)
			}
		})
	}
}
