package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/roomify-app/roomify/internal/client/imagegen"
	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeKeys struct {
	key  string
	err  error
	used []string
	mu   sync.Mutex
}

func (f *fakeKeys) ActiveKey(ctx context.Context, p common.Provider) (string, error) {
	if p != common.ProviderOpenAI {
		return "", nil
	}
	return f.key, f.err
}

func (f *fakeKeys) LogUsage(ctx context.Context, feature string, tokens *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.used = append(f.used, feature)
	return errors.New("usage log down")
}

type fakeEditor struct {
	mu      sync.Mutex
	keys    []string
	reqs    []imagegen.EditRequest
	res     *imagegen.Result
	err     error
	entered chan struct{}
	release chan struct{}
}

func (f *fakeEditor) Edit(ctx context.Context, key string, req imagegen.EditRequest) (*imagegen.Result, error) {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.res, f.err
}

func (f *fakeEditor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type recorder struct {
	mu      sync.Mutex
	success []string
	errs    []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success = append(r.success, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, msg)
}

type fixture struct {
	w      *Wizard
	keys   *fakeKeys
	editor *fakeEditor
	notes  *recorder
	clock  *timex.FakeClock
}

var (
	baseImg  = imagegen.Image{Name: "base.png", ContentType: "image/png", Data: []byte("base")}
	styleImg = imagegen.Image{Name: "style.png", ContentType: "image/png", Data: []byte("style")}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		keys:   &fakeKeys{key: "sk-test"},
		editor: &fakeEditor{res: &imagegen.Result{Image: []byte("png")}},
		notes:  &recorder{},
		clock:  timex.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.w = New(f.keys, f.editor, f.notes, f.clock, logging.Nop{})
	return f
}

func TestNew_InitialState(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []Step{StepUpload}, f.w.OpenSteps())
	assert.Equal(t, StepUpload, f.w.CurrentStep())
	assert.Equal(t, ModeSingle, f.w.Mode())
	assert.Equal(t, Idle, f.w.State())
	assert.False(t, f.w.CanProceedToStep2())
	assert.Nil(t, f.w.Result())
	assert.Empty(t, f.w.History())
}

func TestCanProceedToStep3_SingleMode(t *testing.T) {
	f := newFixture(t)
	f.w.SetBaseImage(baseImg)

	assert.False(t, f.w.CanProceedToStep3())

	f.w.SetNotes("   ")
	assert.False(t, f.w.CanProceedToStep3())

	f.w.SetNotes("warmer lighting")
	assert.True(t, f.w.CanProceedToStep3())

	f.w.SetNotes("")
	f.w.SelectStyle("Scandinavian")
	assert.True(t, f.w.CanProceedToStep3())
}

func TestCanProceedToStep3_DualModeNeedsNotes(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.w.SetUploadMode(ModeDual))
	f.w.SelectStyle("Modern")

	assert.False(t, f.w.CanProceedToStep3())

	f.w.SetNotes("copy the sofa")
	assert.True(t, f.w.CanProceedToStep3())
}

func TestAutoAdvance_SingleMode(t *testing.T) {
	f := newFixture(t)
	f.w.SetBaseImage(baseImg)

	f.clock.Advance(AdvanceDelay - time.Millisecond)
	assert.Equal(t, StepUpload, f.w.CurrentStep())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, []Step{StepStyleNotes}, f.w.OpenSteps())
}

func TestAutoAdvance_DualModeWaitsForBothImages(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.w.SetUploadMode(ModeDual))

	f.w.SetBaseImage(baseImg)
	f.clock.Advance(time.Second)
	assert.Equal(t, StepUpload, f.w.CurrentStep())
	assert.False(t, f.w.CanProceedToStep2())

	f.w.SetStyleReference(styleImg)
	assert.True(t, f.w.CanProceedToStep2())
	f.clock.Advance(AdvanceDelay)
	assert.Equal(t, StepStyleNotes, f.w.CurrentStep())
}

func TestSetUploadMode_Unknown(t *testing.T) {
	f := newFixture(t)
	require.Error(t, f.w.SetUploadMode("triple"))
	assert.Equal(t, ModeSingle, f.w.Mode())
}

func TestGoTo(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.w.GoTo(StepResult))
	assert.Equal(t, []Step{StepResult}, f.w.OpenSteps())
	require.NoError(t, f.w.GoTo(StepUpload))
	assert.Equal(t, StepUpload, f.w.CurrentStep())

	require.ErrorIs(t, f.w.GoTo(Step(7)), ErrUnknownStep)
}

func TestApplyTemplate(t *testing.T) {
	f := newFixture(t)
	single, _ := TemplateText(TemplateSingle)
	multiple, _ := TemplateText(TemplateMultiple)

	got, err := f.w.ApplyTemplate(TemplateSingle)
	require.NoError(t, err)
	assert.Equal(t, single, got)

	got, err = f.w.ApplyTemplate(TemplateMultiple)
	require.NoError(t, err)
	assert.Equal(t, multiple, got)

	f.w.SetNotes("  keep the plants ")
	got, err = f.w.ApplyTemplate(TemplateSingle)
	require.NoError(t, err)
	assert.Equal(t, "keep the plants\n"+single, got)
	assert.Equal(t, got, f.w.Notes())

	_, err = f.w.ApplyTemplate("other")
	require.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name  string
		mode  UploadMode
		style string
		notes string
		want  string
	}{
		{
			name:  "single style and notes",
			mode:  ModeSingle,
			style: "Scandinavian",
			notes: " light oak ",
			want:  "Restyle the base photo to Scandinavian style with light oak. Keep layout/geometry, preserve windows, doors, floor, and lighting. Avoid adding extra furniture unless necessary.",
		},
		{
			name:  "single none style falls back",
			mode:  ModeSingle,
			style: "None",
			want:  "Restyle the base photo to the chosen style. Keep layout/geometry, preserve windows, doors, floor, and lighting. Avoid adding extra furniture unless necessary.",
		},
		{
			name:  "single notes only",
			mode:  ModeSingle,
			notes: "blue walls",
			want:  "Restyle the base photo to blue walls. Keep layout/geometry, preserve windows, doors, floor, and lighting. Avoid adding extra furniture unless necessary.",
		},
		{
			name:  "dual with notes",
			mode:  ModeDual,
			style: "Modern",
			notes: "the rug",
			want:  "Use the FIRST image as the base photo. Copy furniture/finishes from the SECOND image while keeping the room architecture, camera angle, walls, floor, windows, lighting, and proportions. Notes: the rug",
		},
		{
			name: "dual without notes",
			mode: ModeDual,
			want: "Use the FIRST image as the base photo. Copy furniture/finishes from the SECOND image while keeping the room architecture, camera angle, walls, floor, windows, lighting, and proportions. ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPrompt(tt.mode, tt.style, tt.notes))
		})
	}
}

func TestGenerate_NoAPIKey(t *testing.T) {
	f := newFixture(t)
	f.keys.key = ""
	f.w.SetBaseImage(baseImg)
	f.w.SelectStyle("Modern")
	require.NoError(t, f.w.GoTo(StepStyleNotes))

	require.ErrorIs(t, f.w.Generate(context.Background()), ErrNoAPIKey)

	assert.Equal(t, []string{msgNoAPIKey}, f.notes.errs)
	assert.Equal(t, StepStyleNotes, f.w.CurrentStep())
	assert.Equal(t, Idle, f.w.State())
	assert.Zero(t, f.editor.calls())
}

func TestGenerate_KeyLookupFails(t *testing.T) {
	f := newFixture(t)
	f.keys.err = common.ErrorInternal
	f.w.SetBaseImage(baseImg)

	require.ErrorIs(t, f.w.Generate(context.Background()), common.ErrorInternal)
	require.Len(t, f.notes.errs, 1)
	assert.Contains(t, f.notes.errs[0], "Failed to load API key")
}

func TestGenerate_NoBaseImage(t *testing.T) {
	f := newFixture(t)
	f.w.SelectStyle("Modern")

	require.ErrorIs(t, f.w.Generate(context.Background()), ErrNoBaseImage)
	assert.Equal(t, []string{msgNoBaseImage}, f.notes.errs)
	assert.Equal(t, StepUpload, f.w.CurrentStep())
}

func TestGenerate_Incomplete(t *testing.T) {
	f := newFixture(t)
	f.w.SetBaseImage(baseImg)

	require.ErrorIs(t, f.w.Generate(context.Background()), ErrIncomplete)
	assert.Equal(t, []string{msgNeedStyle}, f.notes.errs)
	assert.Zero(t, f.editor.calls())

	require.NoError(t, f.w.SetUploadMode(ModeDual))
	f.w.SetStyleReference(styleImg)
	require.ErrorIs(t, f.w.Generate(context.Background()), ErrIncomplete)
	assert.Equal(t, msgNeedNotes, f.notes.errs[1])
}

func TestGenerate_Success(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.w.SetUploadMode(ModeDual))
	f.w.SetBaseImage(baseImg)
	f.w.SetStyleReference(styleImg)
	f.w.SetNotes("copy the lamp")

	require.NoError(t, f.w.Generate(context.Background()))

	require.Equal(t, 1, f.editor.calls())
	req := f.editor.reqs[0]
	assert.Equal(t, "sk-test", f.editor.keys[0])
	assert.Equal(t, "gpt-image-1", req.Model)
	assert.Equal(t, "1536x1024", req.Size)
	assert.Equal(t, 1, req.N)
	assert.Equal(t, "medium", req.Quality)
	assert.Equal(t, []imagegen.Image{baseImg, styleImg}, req.Images)
	assert.Contains(t, req.Prompt, "Notes: copy the lamp")

	assert.Equal(t, Done, f.w.State())
	assert.Equal(t, float64(100), f.w.Progress())
	assert.Equal(t, []byte("png"), f.w.Result())
	assert.Equal(t, StepResult, f.w.CurrentStep())
	assert.Equal(t, []string{msgGenerated}, f.notes.success)
	assert.Empty(t, f.notes.errs)
	assert.Equal(t, []string{FeatureStylize}, f.keys.used)

	h := f.w.History()
	require.Len(t, h, 1)
	assert.NotEmpty(t, h[0].ID)
	assert.Equal(t, baseImg, h[0].BaseImage)
	require.NotNil(t, h[0].StyleImage)
	assert.Equal(t, styleImg, *h[0].StyleImage)
	assert.Equal(t, "copy the lamp", h[0].Notes)
	assert.Equal(t, f.clock.Now(), h[0].Timestamp)
}

func TestGenerate_SingleModeSendsOneImage(t *testing.T) {
	f := newFixture(t)
	f.w.SetStyleReference(styleImg)
	f.w.SetBaseImage(baseImg)
	f.w.SelectStyle("Coastal")

	require.NoError(t, f.w.Generate(context.Background()))
	assert.Equal(t, []imagegen.Image{baseImg}, f.editor.reqs[0].Images)
	assert.Nil(t, f.w.History()[0].StyleImage)
}

func TestGenerate_HistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.w.SetBaseImage(baseImg)

	f.w.SelectStyle("Modern")
	require.NoError(t, f.w.Generate(context.Background()))
	f.w.SelectStyle("Rustic")
	require.NoError(t, f.w.Generate(context.Background()))

	h := f.w.History()
	require.Len(t, h, 2)
	assert.Equal(t, "Rustic", h[0].Style)
	assert.Equal(t, "Modern", h[1].Style)
}

func TestGenerate_FailureLeavesNoResult(t *testing.T) {
	f := newFixture(t)
	f.w.SetBaseImage(baseImg)
	f.w.SelectStyle("Modern")
	require.NoError(t, f.w.Generate(context.Background()))
	before := f.w.History()

	f.editor.err = &imagegen.APIError{StatusCode: 400, Message: "Invalid image file", Body: "Invalid image file"}
	err := f.w.Generate(context.Background())

	var apiErr *imagegen.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Nil(t, f.w.Result())
	assert.Equal(t, Idle, f.w.State())
	assert.Zero(t, f.w.Progress())
	assert.Equal(t, StepResult, f.w.CurrentStep())
	assert.Equal(t, before, f.w.History())
	assert.Equal(t, []string{"Images Edits error 400: Invalid image file"}, f.notes.errs)
	assert.Len(t, f.keys.used, 1)
}

func TestGenerate_ProgressAndBusy(t *testing.T) {
	f := newFixture(t)
	f.editor.entered = make(chan struct{})
	f.editor.release = make(chan struct{})
	f.w.SetBaseImage(baseImg)
	f.w.SelectStyle("Modern")

	errc := make(chan error, 1)
	go func() { errc <- f.w.Generate(context.Background()) }()
	<-f.editor.entered

	assert.Equal(t, Generating, f.w.State())
	assert.Zero(t, f.w.Progress())
	require.ErrorIs(t, f.w.Generate(context.Background()), ErrBusy)

	f.clock.Advance(time.Second)
	assert.Eventually(t, func() bool {
		return f.w.Progress() > 1.66 && f.w.Progress() < 1.67
	}, time.Second, time.Millisecond)

	f.clock.Advance(29 * time.Second)
	assert.Eventually(t, func() bool { return f.w.Progress() == 50 }, time.Second, time.Millisecond)

	f.clock.Advance(2 * time.Minute)
	assert.Eventually(t, func() bool { return f.w.Progress() == 100 }, time.Second, time.Millisecond)

	close(f.editor.release)
	require.NoError(t, <-errc)
	assert.Equal(t, Done, f.w.State())
	assert.Equal(t, 1, f.editor.calls())
}

func TestStartOver_KeepsHistory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.w.SetUploadMode(ModeDual))
	f.w.SetBaseImage(baseImg)
	f.w.SetStyleReference(styleImg)
	f.w.SetNotes("the chair")
	require.NoError(t, f.w.Generate(context.Background()))

	f.w.SetBaseImage(baseImg)
	f.w.StartOver()

	assert.Zero(t, f.clock.PendingTimers())
	assert.Equal(t, []Step{StepUpload}, f.w.OpenSteps())
	assert.Equal(t, ModeSingle, f.w.Mode())
	assert.Empty(t, f.w.Notes())
	assert.Empty(t, f.w.Style())
	assert.Nil(t, f.w.Result())
	assert.Equal(t, Idle, f.w.State())
	assert.False(t, f.w.CanProceedToStep2())
	assert.Len(t, f.w.History(), 1)
}

func TestResultFileName(t *testing.T) {
	ts := time.UnixMilli(1735689600123)
	assert.Equal(t, "roomify-styled-room-1735689600123.png", ResultFileName(ts))
}

func TestSetUploadMode_DoesNotAdvance(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.w.SetUploadMode(ModeDual))
	f.w.SetBaseImage(baseImg)
	f.clock.Advance(time.Second)
	require.Equal(t, StepUpload, f.w.CurrentStep())

	require.NoError(t, f.w.SetUploadMode(ModeSingle))
	assert.Zero(t, f.clock.PendingTimers())
	f.clock.Advance(time.Second)
	assert.Equal(t, StepUpload, f.w.CurrentStep())
}

func TestGenerate_DualWithoutReferenceUsesSinglePrompt(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.w.SetUploadMode(ModeDual))
	f.w.SetBaseImage(baseImg)
	f.w.SetNotes("copy the sofa")

	require.NoError(t, f.w.Generate(context.Background()))

	require.Equal(t, 1, f.editor.calls())
	req := f.editor.reqs[0]
	assert.Equal(t, []imagegen.Image{baseImg}, req.Images)
	assert.Equal(t, BuildPrompt(ModeSingle, "", "copy the sofa"), req.Prompt)
	assert.NotContains(t, req.Prompt, "SECOND image")

	h := f.w.History()
	require.Len(t, h, 1)
	assert.Nil(t, h[0].StyleImage)
}
