// Package trivyscan invokes the external trivy binary and summarizes its JSON
// output. The vulnerability database itself is trivy's problem, not ours.
package trivyscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// Scanner implements domain.VulnScanner by shelling out to trivy.
type Scanner struct {
	binary string
	log    *logrus.Logger
}

func New(log *logrus.Logger) *Scanner {
	return &Scanner{binary: "trivy", log: log}
}

// Available reports whether the trivy binary can be found on PATH.
func (s *Scanner) Available() bool {
	_, err := exec.LookPath(s.binary)
	return err == nil
}

// Scan runs trivy over each image ref with the given severity filter (e.g.
// "HIGH,CRITICAL") and returns per-image critical/high counts.
func (s *Scanner) Scan(ctx context.Context, refs []string, severity string) ([]domain.ImageScanSummary, error) {
	bin, err := exec.LookPath(s.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: trivy not found in PATH", domain.ErrToolUnavailable)
	}

	summaries := make([]domain.ImageScanSummary, 0, len(refs))
	for _, ref := range refs {
		args := []string{"image", "--format", "json", "--quiet", "--severity", severity, ref}
		cmd := exec.CommandContext(ctx, bin, args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		s.log.WithField("image", ref).Debug("running trivy scan")
		if err := cmd.Run(); err != nil {
			errText := strings.TrimSpace(stderr.String())
			if errText == "" {
				return nil, fmt.Errorf("%w: trivy image %s: %v", domain.ErrInspectionFailed, ref, err)
			}
			return nil, fmt.Errorf("%w: trivy image %s: %v: %s", domain.ErrInspectionFailed, ref, err, errText)
		}

		summary, err := ParseReport(ref, stdout.Bytes())
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// trivyReport is the subset of trivy's JSON output the audit consumes.
type trivyReport struct {
	Results []struct {
		Vulnerabilities []struct {
			Severity string `json:"Severity"`
		} `json:"Vulnerabilities"`
	} `json:"Results"`
}

// ParseReport counts critical and high severity findings in one trivy JSON
// report.
func ParseReport(ref string, data []byte) (domain.ImageScanSummary, error) {
	var report trivyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.ImageScanSummary{}, fmt.Errorf("%w: trivy output for %s: %v", domain.ErrParseError, ref, err)
	}

	summary := domain.ImageScanSummary{Ref: ref}
	for _, result := range report.Results {
		for _, v := range result.Vulnerabilities {
			switch strings.ToUpper(v.Severity) {
			case "CRITICAL":
				summary.Critical++
			case "HIGH":
				summary.High++
			}
		}
	}
	return summary, nil
}
