package vision

import (
	"image"
	"sort"
	"sync"

	"vision-assist/internal/domain/entity"
)

const (
	defaultMinIoU  = 0.3
	defaultMaxMiss = 15
)

type track struct {
	id     int
	class  string
	box    image.Rectangle
	prev   image.Rectangle
	missed int
	hits   int
}

// IoUTracker присваивает детекциям устойчивые идентификаторы треков.
// Сопоставление жадное по убыванию IoU между предсказанной рамкой трека
// и новой детекцией того же класса.
type IoUTracker struct {
	MinIoU  float64
	MaxMiss int

	mu     sync.Mutex
	nextID int
	tracks []*track
}

// NewIoUTracker создаёт трекер с порогами по умолчанию
func NewIoUTracker() *IoUTracker {
	return &IoUTracker{MinIoU: defaultMinIoU, MaxMiss: defaultMaxMiss, nextID: 1}
}

// IoU возвращает отношение пересечения к объединению двух рамок
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	ia := inter.Dx() * inter.Dy()
	union := a.Dx()*a.Dy() + b.Dx()*b.Dy() - ia
	if union <= 0 {
		return 0
	}
	return float64(ia) / float64(union)
}

// predict экстраполирует рамку на один кадр вперёд с постоянной скоростью
func (t *track) predict() image.Rectangle {
	if t.hits < 2 {
		return t.box
	}
	dx := (t.box.Min.X + t.box.Max.X - t.prev.Min.X - t.prev.Max.X) / 2
	dy := (t.box.Min.Y + t.box.Max.Y - t.prev.Min.Y - t.prev.Max.Y) / 2
	return t.box.Add(image.Pt(dx, dy))
}

type candidate struct {
	track, det int
	iou        float64
}

// Update проставляет TrackID детекциям с рамкой и обновляет треки
func (tr *IoUTracker) Update(dets []entity.Detection) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.nextID == 0 {
		tr.nextID = 1
	}

	boxes := make([]image.Rectangle, len(dets))
	for j, d := range dets {
		if d.Box != nil {
			boxes[j] = d.Box.Image()
		}
	}

	var pairs []candidate
	for i, t := range tr.tracks {
		pred := t.predict()
		for j, d := range dets {
			if d.Box == nil || d.Class != t.class {
				continue
			}
			if v := IoU(pred, boxes[j]); v >= tr.MinIoU {
				pairs = append(pairs, candidate{track: i, det: j, iou: v})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].iou > pairs[b].iou })

	usedTrack := make([]bool, len(tr.tracks))
	usedDet := make([]bool, len(dets))
	for _, p := range pairs {
		if usedTrack[p.track] || usedDet[p.det] {
			continue
		}
		usedTrack[p.track], usedDet[p.det] = true, true
		t := tr.tracks[p.track]
		t.prev, t.box = t.box, boxes[p.det]
		t.missed = 0
		t.hits++
		id := t.id
		dets[p.det].TrackID = &id
	}

	kept := tr.tracks[:0]
	for i, t := range tr.tracks {
		if !usedTrack[i] {
			t.missed++
		}
		if t.missed <= tr.MaxMiss {
			kept = append(kept, t)
		}
	}
	tr.tracks = kept

	for j, d := range dets {
		if d.Box == nil || usedDet[j] {
			continue
		}
		t := &track{id: tr.nextID, class: d.Class, box: boxes[j], prev: boxes[j], hits: 1}
		tr.nextID++
		tr.tracks = append(tr.tracks, t)
		id := t.id
		dets[j].TrackID = &id
	}
}
