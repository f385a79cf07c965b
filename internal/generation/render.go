package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"resume-vault/internal/resumes"
)

// RenderArtifact renders a snapshot into a deterministic plain-text artifact.
// Sections appear in sorted order and values are stable-keyed JSON, so the
// same (resume, version) pair always yields identical bytes. Real typesetting
// lives outside this service; downstream consumers take these artifacts as
// rendering input.
func RenderArtifact(resumeID string, versionNumber int, data resumes.SectionMap) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "resume %s version %d\n", resumeID, versionNumber)

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&buf, "\n[%s]\n", name)
		// encoding/json sorts map keys, keeping the output stable.
		value, err := json.MarshalIndent(data[name], "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render section %q: %w", name, err)
		}
		buf.Write(value)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ArtifactFileName names the stored artifact for a job.
func ArtifactFileName(versionNumber int) string {
	return fmt.Sprintf("resume_v%d.txt", versionNumber)
}
