package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum level to log (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info" validate:"oneof=debug info warn error"`
	// Format is the encoding of stdout logs (json, console).
	Format string `mapstructure:"format" default:"json" validate:"oneof=json console"`
	// Output selects where logs go (stdout, file, both).
	Output string `mapstructure:"output" default:"stdout" validate:"oneof=stdout file both"`
	// File is the path of the log file when Output includes file.
	File string `mapstructure:"file" default:"logs/customer-merger.log"`
	// MaxSize is the size in megabytes at which the log file is rotated.
	MaxSize int `mapstructure:"max_size" default:"100"`
	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `mapstructure:"max_backups" default:"5"`
	// MaxAge is the number of days to keep rotated files.
	MaxAge int `mapstructure:"max_age" default:"30"`
	// Compress gzips rotated files.
	Compress bool `mapstructure:"compress" default:"true"`
}
