package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"phototagger/internal/classify"
	"phototagger/internal/logging"
	"phototagger/internal/services"
	"phototagger/internal/sidecar"
	"phototagger/internal/tagging"
	"phototagger/internal/testsupport"
	"phototagger/internal/workflow"
)

func TestScanProcessesImagesInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt", "sub/c.JPG", "sub/deeper/d.nef", "z.jpg"} {
		testsupport.WriteFile(t, filepath.Join(root, name), []byte("x"))
	}
	store := sidecar.NewStore(nil)
	if _, err := store.MergeAndWrite(filepath.Join(root, "z.jpg"), tagging.NewTagSet("Portrait")); err != nil {
		t.Fatalf("seed sidecar: %v", err)
	}

	scorer := testsupport.NewScriptedScorer(map[string]float64{"Landscape": 0.9})
	rep := &recorder{}
	summary, err := workflow.Scan(context.Background(), root, newProcessor(scorer, store, rep), false, logging.NewNop())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	want := []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "b.png"),
		filepath.Join(root, "sub", "c.JPG"),
		filepath.Join(root, "sub", "deeper", "d.nef"),
		filepath.Join(root, "z.jpg"),
	}
	got := rep.paths()
	if len(got) != len(want) {
		t.Fatalf("expected %d outcomes, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("outcome %d: got %s want %s", i, got[i], want[i])
		}
	}
	if summary.Total != 5 || summary.Tagged != 4 || summary.Skipped != 1 || summary.Failed != 0 || summary.NoTags != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if _, err := os.Stat(sidecar.Path(filepath.Join(root, "notes.txt"))); !os.IsNotExist(err) {
		t.Fatalf("non-image must not get a sidecar")
	}
}

func TestScanContinuesAfterFailures(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg"} {
		testsupport.WriteFile(t, filepath.Join(root, name), []byte("x"))
	}
	scorer := testsupport.NewScriptedScorer(nil)
	scorer.Err = errors.New("model offline")

	summary, err := workflow.Scan(context.Background(), root, newProcessor(scorer, sidecar.NewStore(nil), nil), false, nil)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if summary.Failed != 2 || len(summary.Failures) != 2 {
		t.Fatalf("expected two failures, got %+v", summary)
	}
}

func TestScanRejectsMissingOrFileRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.jpg")
	testsupport.WriteFile(t, file, []byte("x"))
	proc := newProcessor(testsupport.NewScriptedScorer(nil), sidecar.NewStore(nil), nil)

	for _, root := range []string{filepath.Join(dir, "missing"), file} {
		if _, err := workflow.Scan(context.Background(), root, proc, false, nil); !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("Scan(%s): expected ErrConfiguration, got %v", root, err)
		}
	}
}

func TestScanStopsOnCancellation(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), []byte("x"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scorer := testsupport.NewScriptedScorer(map[string]float64{"Landscape": 0.9})
	summary, err := workflow.Scan(ctx, root, newProcessor(scorer, sidecar.NewStore(nil), nil), false, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary.Total != 0 || scorer.Calls() != 0 {
		t.Fatalf("expected no work after cancellation, got %+v", summary)
	}
}

func TestScanSkipsUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), []byte("x"))
	locked := filepath.Join(root, "locked")
	testsupport.WriteFile(t, filepath.Join(locked, "b.jpg"), []byte("x"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	scorer := testsupport.NewScriptedScorer(map[string]float64{"Landscape": 0.9})
	summary, err := workflow.Scan(context.Background(), root, newProcessor(scorer, sidecar.NewStore(nil), nil), false, nil)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if summary.Total != 1 || summary.Tagged != 1 {
		t.Fatalf("expected only the readable image, got %+v", summary)
	}
}

// interruptingScorer cancels the scan on its first call and records whether
// the in-progress file still saw a live context.
type interruptingScorer struct {
	*testsupport.ScriptedScorer
	once   sync.Once
	cancel context.CancelFunc
	mu     sync.Mutex
	errs   []error
}

func (s *interruptingScorer) Scores(ctx context.Context, image *classify.Image, labels []string) ([]float64, error) {
	s.once.Do(s.cancel)
	s.mu.Lock()
	s.errs = append(s.errs, ctx.Err())
	s.mu.Unlock()
	return s.ScriptedScorer.Scores(ctx, image, labels)
}

func TestScanFinishesFileInProgressOnCancel(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg"} {
		testsupport.WriteFile(t, filepath.Join(root, name), []byte("x"))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scorer := &interruptingScorer{
		ScriptedScorer: testsupport.NewScriptedScorer(map[string]float64{"Landscape": 0.9}),
		cancel:         cancel,
	}

	summary, err := workflow.Scan(ctx, root, newProcessor(scorer, sidecar.NewStore(nil), nil), false, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary.Total != 1 || summary.Tagged != 1 || summary.Failed != 0 {
		t.Fatalf("expected the interrupted file to be tagged, got %+v", summary)
	}
	for _, ctxErr := range scorer.errs {
		if ctxErr != nil {
			t.Fatalf("file in progress saw cancelled context: %v", ctxErr)
		}
	}
	if _, err := os.Stat(sidecar.Path(filepath.Join(root, "a.jpg"))); err != nil {
		t.Fatalf("expected sidecar for a.jpg: %v", err)
	}
	if _, err := os.Stat(sidecar.Path(filepath.Join(root, "b.jpg"))); !os.IsNotExist(err) {
		t.Fatalf("expected no sidecar for b.jpg, got %v", err)
	}
}
