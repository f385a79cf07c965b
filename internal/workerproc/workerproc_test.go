package workerproc

import (
	"errors"
	"testing"
)

func TestParseMessageValid(t *testing.T) {
	body := `{"jobId":"job-1","resumeId":"resume-1","versionNumber":2,"requestId":"req-1","schema":1}`
	msg, meta, err := ParseMessage(body)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.JobID != "job-1" || msg.ResumeID != "resume-1" || msg.VersionNumber != 2 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if meta.BodyLen != len(body) || meta.BodySHA == "" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestParseMessageEmptyBody(t *testing.T) {
	for _, body := range []string{"", "   "} {
		_, _, err := ParseMessage(body)
		var empty ErrEmptyBody
		if !errors.As(err, &empty) {
			t.Fatalf("ParseMessage(%q): expected ErrEmptyBody, got %v", body, err)
		}
	}
}

func TestParseMessageUndecodable(t *testing.T) {
	_, meta, err := ParseMessage("{not json")
	var decode ErrDecode
	if !errors.As(err, &decode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if meta.BodyLen == 0 || meta.BodySHA == "" {
		t.Fatalf("expected meta for diagnostics, got %+v", meta)
	}
}

func TestParseMessageMissingJobID(t *testing.T) {
	_, _, err := ParseMessage(`{"resumeId":"resume-1","versionNumber":1,"requestId":"req-9"}`)
	var missing ErrMissingJobID
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingJobID, got %v", err)
	}
	if missing.RequestID != "req-9" {
		t.Fatalf("expected request id carried through, got %q", missing.RequestID)
	}
}

func TestComputeMetaEmpty(t *testing.T) {
	meta := ComputeMeta("")
	if meta.BodyLen != 0 || meta.BodySHA != "" {
		t.Fatalf("unexpected meta for empty body: %+v", meta)
	}
}
