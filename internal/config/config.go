// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryRule binds one category label to its keyword tables: TitleAny
// drives the tier-1 title heuristic, Family drives the delegated skill/text
// rule. Rules are evaluated in file order, which is the category priority
// order.
type CategoryRule struct {
	Label    string   `yaml:"label"`
	TitleAny []string `yaml:"title_any"`
	Family   []string `yaml:"family"`
}

type Config struct {
	Source struct {
		StartURL          string  `yaml:"start_url"`
		UserAgent         string  `yaml:"user_agent"`
		Headless          bool    `yaml:"headless"`
		ManualLogin       bool    `yaml:"manual_login"`
		MaxPages          int     `yaml:"max_pages"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		IDParam           string  `yaml:"id_param"`
	} `yaml:"source"`

	Selectors struct {
		Listing    string `yaml:"listing"`
		Title      string `yaml:"title"`
		Employer   string `yaml:"employer"`
		Location   string `yaml:"location"`
		Summary    string `yaml:"summary"`
		DetailLink string `yaml:"detail_link"`
		NextPage   string `yaml:"next_page"`
		DetailBody string `yaml:"detail_body"`
		SkillTag   string `yaml:"skill_tag"`
	} `yaml:"selectors"`

	Timeouts struct {
		ContentSeconds        int `yaml:"content_seconds"`
		DetailSeconds         int `yaml:"detail_seconds"`
		ChallengeGraceSeconds int `yaml:"challenge_grace_seconds"`
		SolveSeconds          int `yaml:"solve_seconds"`
		ClassifierSeconds     int `yaml:"classifier_seconds"`
	} `yaml:"timeouts"`

	Challenge struct {
		Marker    string `yaml:"marker"`
		Callback  string `yaml:"callback"`
		SolverURL string `yaml:"solver_url"`
	} `yaml:"challenge"`

	Classifier struct {
		// Empty endpoint means the in-process keyword-family rules are used.
		Endpoint string `yaml:"endpoint"`
	} `yaml:"classifier"`

	Filters struct {
		EmployersBlock  []string `yaml:"employers_block"`
		RestrictedAny   []string `yaml:"restricted_any"`
		AuthRedirectAny []string `yaml:"auth_redirect_any"`
	} `yaml:"filters"`

	Categories []CategoryRule `yaml:"categories"`

	Store struct {
		Workbook string `yaml:"workbook"`
		Sheet    string `yaml:"sheet"`
	} `yaml:"store"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
