// Package settings defines application-level configuration data.
package settings

import (
	"time"

	"github.com/tesso57/pood/internal/domain/podcast"
)

// ThemeConfig defines the color theme configuration.
type ThemeConfig struct {
	Title string `yaml:"title" kong:"help='Podcast title color',default='205'"`
	Added string `yaml:"added" kong:"help='New episode marker color',default='42'"`
	Muted string `yaml:"muted" kong:"help='Secondary text color',default='244'"`
}

// Settings represents the application configuration.
type Settings struct {
	UserAgent      string      `yaml:"user_agent" kong:"help='User-Agent sent when fetching feeds',default='pood/1.0'"`
	TimeoutSeconds int         `yaml:"timeout_seconds" kong:"help='Feed download timeout in seconds',default='30'"`
	RecordFile     string      `yaml:"record_file" kong:"help='Record file name inside each podcast directory',default='pood.txt'"`
	Identity       string      `yaml:"identity" kong:"help='Episode identity used by sync (title or title+date)',default='title'"`
	JournalFile    string      `yaml:"journal_file" kong:"help='Sync journal database path'"`
	LogLevel       string      `yaml:"log_level" kong:"help='Log level (debug/info/warn/error)',default='warn'"`
	LogFormat      string      `yaml:"log_format" kong:"help='Log format (text/json)',default='text'"`
	Theme          ThemeConfig `yaml:"theme" kong:"embed,prefix='theme.'"`
}

// Timeout returns the download timeout as a duration.
// Non-positive values yield zero, which leaves the fetcher default in place.
func (s Settings) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// KeyFunc returns the configured episode identity.
func (s Settings) KeyFunc() (podcast.KeyFunc, error) {
	return podcast.ParseIdentity(s.Identity)
}
