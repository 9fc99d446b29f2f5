package app

import (
	"context"
	"image"
	"sort"
	"sync"

	"vision-assist/internal/domain/entity"
)

type fakeDetector struct {
	dets []entity.Detection
	err  error
}

func (f *fakeDetector) Detect(ctx context.Context, frame image.Image) ([]entity.Detection, error) {
	return f.dets, f.err
}

// queueDetector отдаёт заранее заданные кадры детекций по очереди
type queueDetector struct {
	mu     sync.Mutex
	frames [][]entity.Detection
}

func (f *queueDetector) Detect(ctx context.Context, frame image.Image) ([]entity.Detection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return nil, nil
	}
	dets := f.frames[0]
	f.frames = f.frames[1:]
	return dets, nil
}

// boxTracker выдаёт номер каждой новой рамке и повторяет его для уже виденной
type boxTracker struct {
	ids map[entity.Rect]int
}

func newBoxTracker() *boxTracker {
	return &boxTracker{ids: make(map[entity.Rect]int)}
}

func (f *boxTracker) Update(dets []entity.Detection) {
	for i, d := range dets {
		if d.Box == nil {
			continue
		}
		id, ok := f.ids[*d.Box]
		if !ok {
			id = len(f.ids) + 1
			f.ids[*d.Box] = id
		}
		dets[i].TrackID = &id
	}
}

type fakeDepth struct {
	field *entity.DepthField
	err   error
}

func (f *fakeDepth) Estimate(ctx context.Context, frame image.Image) (*entity.DepthField, error) {
	return f.field, f.err
}

type memArchive struct {
	mu     sync.Mutex
	frames map[string]image.Image
}

func newMemArchive() *memArchive {
	return &memArchive{frames: make(map[string]image.Image)}
}

func (a *memArchive) Save(ctx context.Context, name string, frame image.Image) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frames[name] = frame
	return nil
}

func (a *memArchive) Load(ctx context.Context) ([]entity.ArchivedFrame, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]entity.ArchivedFrame, 0, len(a.frames))
	for name := range a.frames {
		out = append(out, entity.ArchivedFrame{Name: name, Data: []byte(name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (a *memArchive) Remove(ctx context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.frames, name)
	return nil
}

func (a *memArchive) has(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.frames[name]
	return ok
}

type fakeRenderer struct {
	mu       sync.Mutex
	overlays []*entity.Overlay
}

func (r *fakeRenderer) Render(frame image.Image, overlay *entity.Overlay) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlays = append(r.overlays, overlay)
	return frame
}

type fakeClassifier struct {
	reply  string
	err    error
	calls  int
	frames int
}

func (c *fakeClassifier) Classify(ctx context.Context, frames []entity.ArchivedFrame) (string, error) {
	c.calls++
	c.frames = len(frames)
	return c.reply, c.err
}

type fakeBroadcaster struct {
	sent []entity.DangerAnalysis
}

func (b *fakeBroadcaster) Broadcast(ctx context.Context, analysis entity.DangerAnalysis) error {
	b.sent = append(b.sent, analysis)
	return nil
}

type fakeNotifier struct {
	sent []entity.DangerAnalysis
}

func (n *fakeNotifier) Notify(ctx context.Context, analysis entity.DangerAnalysis) error {
	if analysis.Alarming() {
		n.sent = append(n.sent, analysis)
	}
	return nil
}
