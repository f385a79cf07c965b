package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "owner/resume_v1.txt", want: "owner/resume_v1.txt"},
		{name: "simple prefix", prefix: "artifacts", key: "owner/resume_v1.txt", want: "artifacts/owner/resume_v1.txt"},
		{name: "prefix trailing slash", prefix: "artifacts/", key: "owner/resume_v1.txt", want: "artifacts/owner/resume_v1.txt"},
		{name: "prefix and key slashes", prefix: "/artifacts/", key: "/owner/resume_v1.txt", want: "artifacts/owner/resume_v1.txt"},
		{name: "nested prefix", prefix: "artifacts/prod", key: "owner/resume_v1.txt", want: "artifacts/prod/owner/resume_v1.txt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
