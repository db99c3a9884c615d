package templates

import "github.com/mirrorworks/limbus-pilot/internal/cv"

// Spec is the tunable configuration for one named template: the base image
// file name (suffix variants are derived from it), the match threshold, and
// the region of the frame to search.
type Spec struct {
	Base      string
	Threshold float64
	ROI       cv.ROI
}

// DefaultSpecs is the built-in template table. Thresholds and regions are
// tuned against 1080p-and-up captures of the target application; a spec file
// can override any of them per name.
func DefaultSpecs() map[string]Spec {
	return map[string]Spec{
		"winrate":           {"winrate", 0.75, cv.ROI{X: 0.50, Y: 0.70, W: 0.50, H: 0.30}},
		"speech_menu":       {"Speech Menu", 0.75, cv.ROI{X: 0.50, Y: 0.00, W: 0.50, H: 0.30}},
		"fast_forward":      {"Fast Forward", 0.75, cv.ROI{X: 0.45, Y: 0.00, W: 0.35, H: 0.20}},
		"confirm":           {"Confirm", 0.80, cv.ROI{X: 0.35, Y: 0.55, W: 0.35, H: 0.25}},
		"black_confirm":     {"Black Confirm", 0.80, cv.ROI{X: 0.36, Y: 0.67, W: 0.26, H: 0.12}},
		"black_confirm_v2":  {"Black Confirm Wide", 0.80, cv.ROI{X: 0.70, Y: 0.70, W: 0.30, H: 0.30}},
		"battle":            {"To Battle", 0.70, cv.ROI{X: 0.70, Y: 0.70, W: 0.30, H: 0.30}},
		"chain_battle":      {"Battle Chain", 0.82, cv.ROI{X: 0.50, Y: 0.50, W: 0.50, H: 0.50}},
		"skip":              {"Skip", 0.80, cv.ROI{X: 0.00, Y: 0.30, W: 0.50, H: 0.40}},
		"enter":             {"Enter", 0.80, cv.ROI{X: 0.50, Y: 0.60, W: 0.50, H: 0.40}},
		"choice_needed":     {"Choice Check", 0.70, cv.ROI{X: 0.45, Y: 0.20, W: 0.45, H: 0.15}},
		"fusion_check":      {"Fusion Check", 0.70, cv.ROI{X: 0.20, Y: 0.00, W: 0.60, H: 0.30}},
		"ego_check":         {"EGO Check", 0.80, cv.ROI{X: 0.33, Y: 0.22, W: 0.33, H: 0.10}},
		"ego_get":           {"EGO Get", 0.80, cv.ROI{X: 0.33, Y: 0.22, W: 0.33, H: 0.10}},
		"proceed":           {"Proceed", 0.80, cv.ROI{X: 0.50, Y: 0.70, W: 0.50, H: 0.30}},
		"very_high":         {"Very High", 0.85, cv.ROI{X: 0.00, Y: 0.70, W: 1.00, H: 0.30}},
		"commence":          {"Commence", 0.80, cv.ROI{X: 0.50, Y: 0.70, W: 0.50, H: 0.30}},
		"commence_battle":   {"Commence Battle", 0.80, cv.ROI{X: 0.50, Y: 0.70, W: 0.50, H: 0.30}},
		"continue":          {"Continue", 0.80, cv.ROI{X: 0.50, Y: 0.70, W: 0.50, H: 0.30}},
		"luxcavations":      {"Luxcavations", 0.80, cv.ROI{X: 0.22, Y: 0.08, W: 0.25, H: 0.40}},
		"select_exp_lux":    {"Select EXP Lux", 0.80, cv.ROI{X: 0.04, Y: 0.30, W: 0.15, H: 0.12}},
		"select_thread_lux": {"Select Thread Lux", 0.80, cv.ROI{X: 0.04, Y: 0.40, W: 0.15, H: 0.12}},
		"lux_enter":         {"Lux Enter", 0.80, cv.ROI{X: 0.20, Y: 0.55, W: 0.80, H: 0.25}},
		"exp_lux_enter":     {"EXP Lux Enter", 0.80, cv.ROI{X: 0.20, Y: 0.60, W: 0.80, H: 0.20}},
		"thread_lux_battle": {"Thread Lux Battle Select", 0.80, cv.ROI{X: 0.30, Y: 0.30, W: 0.42, H: 0.45}},
		"drive":             {"Drive", 0.92, cv.ROI{X: 0.50, Y: 0.80, W: 0.50, H: 0.20}},
	}
}
