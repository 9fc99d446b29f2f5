package palette

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"vision-assist/internal/domain/entity"
)

const (
	// DefaultTargetContrast минимальный контраст текста WCAG AA
	DefaultTargetContrast = 4.5
	// DefaultLightnessDelta сдвиг светлоты фона по шкале L 0-100
	DefaultLightnessDelta = 27.0

	sweepStepPercent = 5
	hueStepDegrees   = 10
)

// Stage этап поиска, на котором найдена пара цветов
type Stage int

const (
	StageSeed          Stage = iota // исходная пара уже контрастна
	StageTextLightness              // перебор светлоты текста
	StageBackground                 // перебор светлоты и насыщенности фона
	StageTextHue                    // перебор тона текста
	StageFallback                   // ничего не найдено, исходная пара
)

func (s Stage) String() string {
	switch s {
	case StageSeed:
		return "seed"
	case StageTextLightness:
		return "text_lightness"
	case StageBackground:
		return "background"
	case StageTextHue:
		return "text_hue"
	default:
		return "fallback"
	}
}

// Selection результат подбора цветов для одного кадра.
type Selection struct {
	Pair     entity.ColorPair
	Contrast float64
	Stage    Stage
	SampleL  float64         // светлота внешней области, 0-100
	Interior image.Rectangle // может быть пустой
	Exterior image.Rectangle
}

// Selector подбирает пару фон/текст с контрастом не ниже целевого.
// Состояния между кадрами нет, безопасен для параллельного использования.
type Selector struct {
	TargetContrast float64
	LightnessDelta float64
	Flip180        bool // кадр снят перевёрнутым относительно углов панели
}

// NewSelector создаёт селектор с параметрами по умолчанию
func NewSelector(targetContrast float64, flip180 bool) *Selector {
	if targetContrast <= 0 || math.IsNaN(targetContrast) {
		targetContrast = DefaultTargetContrast
	}
	return &Selector{
		TargetContrast: targetContrast,
		LightnessDelta: DefaultLightnessDelta,
		Flip180:        flip180,
	}
}

// Select берёт средний цвет вокруг панели, строит из него фон
// и подбирает к нему текст.
func (s *Selector) Select(frame image.Image, quad entity.UIQuad, flipColors bool) Selection {
	interior, exterior := SampleRegions(frame.Bounds(), quad, s.Flip180)
	mean, _ := MeanColor(frame, exterior)

	sampleL, _, _ := ColorToLab(mean)
	bg := s.Background(mean, flipColors)
	pair, stage := s.Search(entity.ColorPair{Background: bg, Text: bg})

	return Selection{
		Pair:     pair,
		Contrast: PairContrast(pair),
		Stage:    stage,
		SampleL:  sampleL,
		Interior: interior,
		Exterior: exterior,
	}
}

// Background сдвигает светлоту образца в LAB: светлый образец темнеет
// на LightnessDelta, тёмный уходит в L = 0. flipColors инвертирует a/b.
func (s *Selector) Background(sample colorful.Color, flipColors bool) entity.RGB {
	l, a, b := ColorToLab(sample)
	if l > 50 {
		l = math.Max(0, l-s.lightnessDelta())
	} else {
		l = 0
	}
	if flipColors {
		a, b = -a, -b
	}
	return LabToRGB(l, a, b)
}

// Search подбирает пару с целевым контрастом. Порядок фиксирован:
// светлота текста, затем светлота и насыщенность фона, затем тон текста.
// Если ничего не подошло, возвращается исходная пара.
func (s *Selector) Search(seed entity.ColorPair) (entity.ColorPair, Stage) {
	if PairContrast(seed) >= s.target() {
		return seed, StageSeed
	}
	if p, ok := s.sweepTextLightness(seed); ok {
		return p, StageTextLightness
	}
	if p, ok := s.sweepBackground(seed); ok {
		return p, StageBackground
	}
	if p, ok := s.sweepTextHue(seed); ok {
		return p, StageTextHue
	}
	return seed, StageFallback
}

func (s *Selector) sweepTextLightness(seed entity.ColorPair) (entity.ColorPair, bool) {
	h, sat, _ := RGBToHSL(seed.Text)
	for l := 0; l <= 100; l += sweepStepPercent {
		text := HSLToRGB(h, sat, float64(l)/100)
		if ContrastRatio(text, seed.Background) >= s.target() {
			return entity.ColorPair{Background: seed.Background, Text: text}, true
		}
	}
	return seed, false
}

func (s *Selector) sweepBackground(seed entity.ColorPair) (entity.ColorPair, bool) {
	h, _, _ := RGBToHSL(seed.Background)
	for l := 0; l <= 100; l += sweepStepPercent {
		for sat := 0; sat <= 100; sat += sweepStepPercent {
			bg := HSLToRGB(h, float64(sat)/100, float64(l)/100)
			if ContrastRatio(seed.Text, bg) >= s.target() {
				return entity.ColorPair{Background: bg, Text: seed.Text}, true
			}
		}
	}
	return seed, false
}

func (s *Selector) sweepTextHue(seed entity.ColorPair) (entity.ColorPair, bool) {
	h, sat, l := RGBToHSL(seed.Text)
	for step := hueStepDegrees; step < 360; step += hueStepDegrees {
		text := HSLToRGB(math.Mod(h+float64(step), 360), sat, l)
		if ContrastRatio(text, seed.Background) >= s.target() {
			return entity.ColorPair{Background: seed.Background, Text: text}, true
		}
	}
	return seed, false
}

func (s *Selector) target() float64 {
	if s.TargetContrast <= 0 || math.IsNaN(s.TargetContrast) {
		return DefaultTargetContrast
	}
	return s.TargetContrast
}

func (s *Selector) lightnessDelta() float64 {
	if s.LightnessDelta <= 0 {
		return DefaultLightnessDelta
	}
	return s.LightnessDelta
}
