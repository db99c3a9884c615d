package templates

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/disintegration/gift"
	"gopkg.in/yaml.v3"

	"github.com/mirrorworks/limbus-pilot/internal/cv"
	"github.com/mirrorworks/limbus-pilot/internal/logging"
)

// Store holds the live template table: per name, the loaded image variants
// plus the tunable threshold and ROI. The sequencer reads a snapshot once
// per cycle; the external tuner mutates threshold/ROI between cycles and can
// trigger a full reload. Entries whose images all fail to load are dropped
// with a warning; the table can be partial.
type Store struct {
	mu        sync.RWMutex
	dir       string
	preferHDR bool
	specs     map[string]Spec
	entries   map[string]cv.Template
	log       *logging.Logger
}

// SpecDefinition is one template entry in a YAML spec file.
type SpecDefinition struct {
	Name      string  `yaml:"name"`
	Base      string  `yaml:"base"`
	Threshold float64 `yaml:"threshold"`
	ROI       cv.ROI  `yaml:"roi"`
}

// SpecFile is the on-disk spec format, also the tuner's save target.
type SpecFile struct {
	Templates []SpecDefinition `yaml:"templates"`
}

// NewStore creates a store rooted at dir, seeded with the built-in spec
// table.
func NewStore(dir string, log *logging.Logger) *Store {
	if log == nil {
		log = logging.NewLogger("templates")
	}
	return &Store{
		dir:     dir,
		specs:   DefaultSpecs(),
		entries: make(map[string]cv.Template),
		log:     log,
	}
}

// LoadSpecFile overlays threshold/ROI/base overrides from a YAML file onto
// the built-in table. Unknown names add new entries. A missing file is not
// an error; defaults apply.
func (s *Store) LoadSpecFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.log.Infof("spec file %s not found, using built-in template table", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read spec file %s: %w", path, err)
	}

	var file SpecFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal spec file %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, def := range file.Templates {
		if def.Name == "" {
			return fmt.Errorf("spec file %s: template %d has no name", path, i+1)
		}
		spec, ok := s.specs[def.Name]
		if !ok {
			spec = Spec{Base: def.Name, Threshold: 0.8, ROI: cv.FullFrame}
		}
		if def.Base != "" {
			spec.Base = def.Base
		}
		if def.Threshold > 0 {
			spec.Threshold = def.Threshold
		}
		if !def.ROI.IsZero() {
			spec.ROI = def.ROI
		}
		s.specs[def.Name] = spec
	}
	return nil
}

// SaveSpecFile writes the current tuning table to a YAML file, for the
// external tuner's persistence.
func (s *Store) SaveSpecFile(path string) error {
	s.mu.RLock()
	names := make([]string, 0, len(s.specs))
	for name := range s.specs {
		names = append(names, name)
	}
	sort.Strings(names)

	file := SpecFile{Templates: make([]SpecDefinition, 0, len(names))}
	for _, name := range names {
		spec := s.specs[name]
		file.Templates = append(file.Templates, SpecDefinition{
			Name:      name,
			Base:      spec.Base,
			Threshold: spec.Threshold,
			ROI:       spec.ROI,
		})
	}
	s.mu.RUnlock()

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal spec file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write spec file %s: %w", path, err)
	}
	return nil
}

// SetPreferHDR flips the variant preference order. Takes effect on the next
// Load/Refresh.
func (s *Store) SetPreferHDR(hdr bool) {
	s.mu.Lock()
	s.preferHDR = hdr
	s.mu.Unlock()
}

// Load reads the image files for every spec entry. Per name it tries the
// preferred variant pair (" SDR.png" and " HDR.png" suffixes, order per the
// display preference) and falls back to the plain "<base>.png" when neither
// is present. Names with zero loadable variants are dropped with a warning.
// Load fails only when no template loads at all, which is fatal upstream.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	suffixes := []string{" SDR.png", " HDR.png"}
	if s.preferHDR {
		suffixes = []string{" HDR.png", " SDR.png"}
	}

	entries := make(map[string]cv.Template, len(s.specs))
	for name, spec := range s.specs {
		var variants []cv.Variant
		for _, suffix := range suffixes {
			path := filepath.Join(s.dir, spec.Base+suffix)
			v, err := loadVariant(path)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				s.log.Warnf("template %s: variant %s unreadable: %v", name, path, err)
				continue
			}
			variants = append(variants, v)
		}
		if len(variants) == 0 {
			path := filepath.Join(s.dir, spec.Base+".png")
			v, err := loadVariant(path)
			if err == nil {
				variants = append(variants, v)
			} else if !os.IsNotExist(err) {
				s.log.Warnf("template %s: fallback %s unreadable: %v", name, path, err)
			}
		}
		if len(variants) == 0 {
			s.log.Warnf("template %s: no image files found for base %q, entry dropped", name, spec.Base)
			continue
		}
		entries[name] = cv.Template{
			Name:      name,
			Variants:  variants,
			Threshold: spec.Threshold,
			ROI:       spec.ROI,
		}
	}

	if len(entries) == 0 {
		return fmt.Errorf("no templates loaded from %s", s.dir)
	}
	s.entries = entries
	s.log.Infof("loaded %d/%d templates from %s", len(entries), len(s.specs), s.dir)
	return nil
}

// Refresh re-runs loading, picking up a changed display-mode preference or
// replaced image files.
func (s *Store) Refresh() error {
	return s.Load()
}

// Snapshot returns a copy of the template table for one sequencer cycle.
// Threshold and ROI are copied by value so concurrent tuning cannot tear an
// entry mid-cycle; variant images are immutable and shared.
func (s *Store) Snapshot() map[string]cv.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]cv.Template, len(s.entries))
	for name, tmpl := range s.entries {
		out[name] = tmpl
	}
	return out
}

// Get returns a single template by name.
func (s *Store) Get(name string) (cv.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tmpl, ok := s.entries[name]
	return tmpl, ok
}

// Subset returns the loaded templates among the requested names.
func (s *Store) Subset(names []string) map[string]cv.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]cv.Template, len(names))
	for _, name := range names {
		if tmpl, ok := s.entries[name]; ok {
			out[name] = tmpl
		}
	}
	return out
}

// Names lists all configured template names, loaded or not.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.specs))
	for name := range s.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tuning returns the current threshold and ROI for a name.
func (s *Store) Tuning(name string) (threshold float64, roi cv.ROI, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.specs[name]
	if !ok {
		return 0, cv.ROI{}, false
	}
	return spec.Threshold, spec.ROI, true
}

// SetTuning updates threshold and ROI for a name in one coherent write,
// applied both to the spec table and to the loaded entry.
func (s *Store) SetTuning(name string, threshold float64, roi cv.ROI) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.specs[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	spec.Threshold = threshold
	spec.ROI = roi
	s.specs[name] = spec

	if entry, ok := s.entries[name]; ok {
		entry.Threshold = threshold
		entry.ROI = roi
		s.entries[name] = entry
	}
	return nil
}

// loadVariant reads one PNG, converts it to grayscale, and derives a binary
// opacity mask when the source carries an alpha channel.
func loadVariant(path string) (cv.Variant, error) {
	f, err := os.Open(path)
	if err != nil {
		return cv.Variant{}, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return cv.Variant{}, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	gift.New(gift.Grayscale()).Draw(gray, img)

	var mask *image.Alpha
	if hasAlphaChannel(img) {
		mask = image.NewAlpha(gray.Bounds())
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				_, _, _, a := img.At(x, y).RGBA()
				if a > 0 {
					mask.Pix[mask.PixOffset(x-bounds.Min.X, y-bounds.Min.Y)] = 255
				}
			}
		}
	}

	return cv.Variant{Image: gray, Mask: mask}, nil
}

func hasAlphaChannel(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		return true
	}
	return false
}
