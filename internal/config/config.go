package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Company struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
		Debug   bool   `yaml:"debug"`
		LogJSON bool   `yaml:"log_json"`
	} `yaml:"app"`

	Scorer struct {
		Python         string `yaml:"python"`          // interpreter, e.g. python3
		Script         string `yaml:"script"`          // path to job_recommender.py
		TimeoutSeconds int    `yaml:"timeout_seconds"` // per invocation
		FetchLimit     int    `yaml:"fetch_limit"`     // default rows for stored reads
	} `yaml:"scorer"`

	Scraper struct {
		Enabled        bool   `yaml:"enabled"`
		Python         string `yaml:"python"`
		Script         string `yaml:"script"` // path to job_scraper.py
		Query          string `yaml:"query"`
		Location       string `yaml:"location"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"scraper"`

	Sources struct {
		Greenhouse struct {
			Enabled   bool      `yaml:"enabled"`
			Companies []Company `yaml:"companies"`
		} `yaml:"greenhouse"`
	} `yaml:"sources"`

	Email struct {
		Enabled          bool     `yaml:"enabled"`
		IMAPHost         string   `yaml:"imap_host"`
		IMAPPort         int      `yaml:"imap_port"`
		Username         string   `yaml:"username"`
		Mailbox          string   `yaml:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any"`
		MaxMessages      int      `yaml:"max_messages"`
	} `yaml:"email"`

	Polling struct {
		ScrapeSeconds int `yaml:"scrape_seconds"`
	} `yaml:"polling"`
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
