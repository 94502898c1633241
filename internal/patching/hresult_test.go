package patching

import (
	"strings"
	"testing"
)

func TestFormatHResultKnownCode(t *testing.T) {
	got := FormatHResult(0x8024200D)
	if !strings.Contains(got, "0x8024200D") || !strings.Contains(got, "WU_E_UH_NEEDANOTHERDOWNLOAD") {
		t.Fatalf("unexpected format for known code: %q", got)
	}
}

func TestFormatHResultUnknownCode(t *testing.T) {
	got := FormatHResult(0x12345678)
	if got != "0x12345678: unknown HRESULT" {
		t.Fatalf("unexpected format for unknown code: %q", got)
	}
}

func TestNeedsAnotherDownload(t *testing.T) {
	if !NeedsAnotherDownload(0x8024200D) {
		t.Fatal("0x8024200D is the needs-another-download code")
	}
	if NeedsAnotherDownload(0x8024000E) {
		t.Fatal("other codes must not match")
	}
}

func TestIsOperationInProgress(t *testing.T) {
	if !IsOperationInProgress(0x8024000E) || !IsOperationInProgress(0x80240016) {
		t.Fatal("expected both busy codes to match")
	}
	if IsOperationInProgress(0) {
		t.Fatal("zero must not match")
	}
}
