package logger

import "os"

type Config struct {
	Level      Level  `json:"level"       yaml:"level"`
	Format     string `json:"format"      yaml:"format"` // json, console, text
	Output     string `json:"output"      yaml:"output"` // stdout, stderr, file
	FilePath   string `json:"file_path"   yaml:"file_path"`
	MaxSize    int    `json:"max_size"    yaml:"max_size"` // MB
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAge     int    `json:"max_age"     yaml:"max_age"` // days
	Compress   bool   `json:"compress"    yaml:"compress"`
	Fields     Fields `json:"fields"      yaml:"fields"` // static fields attached to every entry
}

func NewDefaultConfig() *Config {
	hostname, _ := os.Hostname()

	return &Config{
		Level:      LevelInfo,
		Format:     "console",
		Output:     "stdout",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
		Fields: Fields{
			"service":  "notify-hub",
			"hostname": hostname,
			"pid":      os.Getpid(),
		},
	}
}
