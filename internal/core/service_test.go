package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/datasweeper/internal/table"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingRecorder struct {
	mu       sync.Mutex
	parsed   int
	rejected int
	converts int
	sessions int
}

func (r *countingRecorder) FileParsed(string, time.Duration, error) {
	r.mu.Lock()
	r.parsed++
	r.mu.Unlock()
}

func (r *countingRecorder) FileRejected(string) {
	r.mu.Lock()
	r.rejected++
	r.mu.Unlock()
}

func (r *countingRecorder) Converted(string, string, time.Duration, error) {
	r.mu.Lock()
	r.converts++
	r.mu.Unlock()
}

func (r *countingRecorder) SessionsActive(n int) {
	r.mu.Lock()
	r.sessions = n
	r.mu.Unlock()
}

func newTestService(t *testing.T, opts ...Option) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewService(Config{SessionTTL: time.Hour, PreviewRows: 2, MaxFiles: 3}, opts...), clock
}

func uploadOne(t *testing.T, s *Service, name, data string) FileSummary {
	t.Helper()
	summaries := s.Upload(context.Background(), []UploadFile{{Name: name, Data: []byte(data)}})
	if len(summaries) != 1 {
		t.Fatalf("Upload returned %d summaries, want 1", len(summaries))
	}
	if summaries[0].Failed() {
		t.Fatalf("Upload(%s) failed: %v", name, summaries[0].Err)
	}
	return summaries[0]
}

func TestUpload_BatchContinuesAfterFailure(t *testing.T) {
	rec := &countingRecorder{}
	s, _ := newTestService(t, WithRecorder(rec))

	summaries := s.Upload(context.Background(), []UploadFile{
		{Name: "report.txt", Data: []byte("a\n1\n")},
		{Name: "data.csv", Data: []byte("a,b\n1,x\n2,y\n3,z\n")},
		{Name: "broken.csv", Data: []byte("a\n1,2\n")},
	})

	if len(summaries) != 3 {
		t.Fatalf("got %d summaries, want 3", len(summaries))
	}

	if !summaries[0].Failed() || !errors.Is(summaries[0].Err, table.ErrUnsupportedFormat) {
		t.Errorf("report.txt Err = %v, want unsupported format", summaries[0].Err)
	}
	if summaries[0].ErrorCode != "FILE006" {
		t.Errorf("report.txt ErrorCode = %q, want FILE006", summaries[0].ErrorCode)
	}

	ok := summaries[1]
	if ok.Failed() {
		t.Fatalf("data.csv failed: %v", ok.Err)
	}
	if ok.ID == "" || ok.Rows != 3 || ok.Format != "csv" {
		t.Errorf("data.csv summary = %+v", ok)
	}
	if len(ok.Head) != 2 {
		t.Errorf("head rows = %d, want 2", len(ok.Head))
	}
	if got := ok.ColumnNames(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("columns = %v, want [a b]", got)
	}

	if !summaries[2].Failed() || summaries[2].ErrorCode != "FILE002" {
		t.Errorf("broken.csv = %+v, want FILE002 failure", summaries[2])
	}

	if rec.rejected != 1 || rec.parsed != 2 || rec.sessions != 1 {
		t.Errorf("recorder = %+v", rec)
	}
	if got := len(s.Files()); got != 1 {
		t.Errorf("Files() = %d, want 1", got)
	}
}

func TestUpload_MaxFiles(t *testing.T) {
	s, _ := newTestService(t)
	files := make([]UploadFile, 5)
	for i := range files {
		files[i] = UploadFile{Name: "f.csv", Data: []byte("a\n1\n")}
	}

	summaries := s.Upload(context.Background(), files)
	for i, sum := range summaries {
		wantFail := i >= 3
		if sum.Failed() != wantFail {
			t.Errorf("file %d Failed() = %v, want %v", i, sum.Failed(), wantFail)
		}
		if wantFail && !errors.Is(sum.Err, ErrTooManyFiles) {
			t.Errorf("file %d Err = %v, want ErrTooManyFiles", i, sum.Err)
		}
	}
}

func TestUpload_SniffNotice(t *testing.T) {
	s, _ := newTestService(t)
	xlsx, err := table.Serialize(mustTable(t, "a\n1\n"), table.Excel)
	if err != nil {
		t.Fatal(err)
	}

	sum := s.Upload(context.Background(), []UploadFile{{Name: "data.xlsx", Data: xlsx.Data}})[0]
	if sum.Failed() {
		t.Fatalf("upload failed: %v", sum.Err)
	}
	if sum.Notice != "" {
		t.Errorf("Notice = %q, want none for a real workbook", sum.Notice)
	}
}

func TestPreview_DoesNotModifyStoredTable(t *testing.T) {
	s, _ := newTestService(t)
	sum := uploadOne(t, s, "data.csv", "a,b\n1,\n2,4\n1,\n")

	opts := Options{Clean: table.CleanOptions{RemoveDuplicates: true, FillMissingNumeric: true}, Chart: true}
	got, err := s.Preview(context.Background(), sum.ID, opts)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if got.RowsIn != 3 || got.RowsOut != 2 || got.DuplicatesRemoved != 1 || got.CellsFilled != 1 {
		t.Errorf("Preview counts = in %d out %d dup %d filled %d", got.RowsIn, got.RowsOut, got.DuplicatesRemoved, got.CellsFilled)
	}
	if got.Chart == nil || len(got.Chart.Series) != 2 {
		t.Errorf("Chart = %+v, want two series", got.Chart)
	}
	if got.OutputName != "data.csv" {
		t.Errorf("OutputName = %q, want data.csv", got.OutputName)
	}

	again, err := s.File(sum.ID)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if again.Rows != 3 {
		t.Errorf("stored rows = %d after preview, want 3", again.Rows)
	}
}

func TestPreview_EmptyNumericColumnIsNotice(t *testing.T) {
	s, _ := newTestService(t)
	sum := uploadOne(t, s, "data.csv", "a,b\n1,\n2,\n")

	got, err := s.Preview(context.Background(), sum.ID, Options{Clean: table.CleanOptions{FillMissingNumeric: true}})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(got.Notices) != 1 {
		t.Fatalf("Notices = %v, want one", got.Notices)
	}
}

func TestConvert_CSVToExcel(t *testing.T) {
	history := NewMemoryHistory(10)
	s, _ := newTestService(t, WithHistory(history))
	sum := uploadOne(t, s, "data.csv", "a,b\n1,x\n1,x\n")

	ctx := WithRequester(context.Background(), Requester{IP: "10.0.0.1", UserAgent: "curl/8.5.0"})
	res, err := s.Convert(ctx, sum.ID, Options{
		Clean:   table.CleanOptions{RemoveDuplicates: true},
		Columns: []string{"b"},
		Target:  table.Excel,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if res.Filename != "data.xlsx" {
		t.Errorf("Filename = %q, want data.xlsx", res.Filename)
	}
	if res.MIMEType != table.Excel.MIMEType() {
		t.Errorf("MIMEType = %q", res.MIMEType)
	}

	back, err := table.Parse(res.Data, table.Excel)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if back.NumRows() != 1 || back.NumColumns() != 1 {
		t.Errorf("output is %dx%d, want 1x1", back.NumRows(), back.NumColumns())
	}

	records, err := s.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("History len = %d, want 1", len(records))
	}
	r := records[0]
	if r.FileName != "data.csv" || r.Target != "excel" || r.RowsIn != 2 || r.RowsOut != 1 || r.DuplicatesRemoved != 1 || r.ClientIP != "10.0.0.1" || r.UserAgent != "curl/8.5.0" {
		t.Errorf("history record = %+v", r)
	}
}

type failingHistory struct{}

func (failingHistory) Record(context.Context, HistoryRecord) error {
	return errors.New("connection refused")
}

func (failingHistory) Recent(context.Context, int) ([]HistoryRecord, error) {
	return nil, nil
}

func TestConvert_HistoryFailureDoesNotFail(t *testing.T) {
	s, _ := newTestService(t, WithHistory(failingHistory{}))
	sum := uploadOne(t, s, "data.csv", "a\n1\n")

	if _, err := s.Convert(context.Background(), sum.ID, Options{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
}

func TestConvert_UnknownColumn(t *testing.T) {
	s, _ := newTestService(t)
	sum := uploadOne(t, s, "data.csv", "a\n1\n")

	_, err := s.Convert(context.Background(), sum.ID, Options{Columns: []string{"nope"}})
	if !errors.Is(err, table.ErrUnknownColumn) {
		t.Errorf("Convert error = %v, want ErrUnknownColumn", err)
	}
}

func TestDiscard(t *testing.T) {
	s, _ := newTestService(t)
	sum := uploadOne(t, s, "data.csv", "a\n1\n")

	if err := s.Discard(sum.ID); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := s.File(sum.ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("File after Discard error = %v, want ErrFileNotFound", err)
	}
	if err := s.Discard(sum.ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("second Discard error = %v, want ErrFileNotFound", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	s, clock := newTestService(t)
	sum := uploadOne(t, s, "data.csv", "a\n1\n")

	clock.Advance(59 * time.Minute)
	if _, err := s.File(sum.ID); err != nil {
		t.Fatalf("File before expiry: %v", err)
	}
	if n := s.Sweep(); n != 0 {
		t.Errorf("Sweep before expiry removed %d", n)
	}

	clock.Advance(time.Minute)
	if _, err := s.Preview(context.Background(), sum.ID, Options{}); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Preview after expiry error = %v, want ErrFileNotFound", err)
	}
	if got := len(s.Files()); got != 0 {
		t.Errorf("Files() after expiry = %d, want 0", got)
	}
	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep after expiry removed %d, want 1", n)
	}
}

func TestStartJanitorStopsOnCancel(t *testing.T) {
	s, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.StartJanitor(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestFilesOrderedByUpload(t *testing.T) {
	s, clock := newTestService(t)
	first := uploadOne(t, s, "b.csv", "a\n1\n")
	clock.Advance(time.Second)
	second := uploadOne(t, s, "a.csv", "a\n1\n")

	files := s.Files()
	if len(files) != 2 || files[0].ID != first.ID || files[1].ID != second.ID {
		t.Errorf("Files() order = %v", files)
	}
}

func TestRequesterFrom(t *testing.T) {
	if got := RequesterFrom(context.Background()); got != (Requester{}) {
		t.Errorf("RequesterFrom(empty) = %+v, want zero", got)
	}
	want := Requester{IP: "192.0.2.7", UserAgent: "sweeper-test"}
	if got := RequesterFrom(WithRequester(context.Background(), want)); got != want {
		t.Errorf("RequesterFrom() = %+v, want %+v", got, want)
	}
}
