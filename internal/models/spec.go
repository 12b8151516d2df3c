package models

// Service manager selection for the deploy phase.
const (
	ServiceManagerSudo = "sudo"
	ServiceManagerDBus = "dbus"
)

// CopyFile maps one explicit archive entry to an absolute destination path.
type CopyFile struct {
	ArchivePath string `yaml:"archive_path" toml:"archive_path" json:"archive_path"`
	TargetPath  string `yaml:"target_path" toml:"target_path" json:"target_path"`
}

// CopyPattern copies every archive entry matching a shell-style glob into a
// target directory, keeping the entry's basename.
type CopyPattern struct {
	Pattern   string `yaml:"pattern" toml:"pattern" json:"pattern"`
	TargetDir string `yaml:"target_dir" toml:"target_dir" json:"target_dir"`
}

// DeploySpec represents the parsed deploy configuration.
type DeploySpec struct {
	Repo            string        `yaml:"repo" toml:"repo" json:"repo"`
	Artifact        string        `yaml:"artifact" toml:"artifact" json:"artifact"`
	Branch          string        `yaml:"branch,omitempty" toml:"branch,omitempty" json:"branch,omitempty"`
	CopyFiles       []CopyFile    `yaml:"copy_files,omitempty" toml:"copy_files,omitempty" json:"copy_files,omitempty"`
	CopyPatterns    []CopyPattern `yaml:"copy_patterns,omitempty" toml:"copy_patterns,omitempty" json:"copy_patterns,omitempty"`
	ZipLocation     string        `yaml:"zip_location,omitempty" toml:"zip_location,omitempty" json:"zip_location,omitempty"`
	SystemdServices []string      `yaml:"systemd_services,omitempty" toml:"systemd_services,omitempty" json:"systemd_services,omitempty"`
	AllowRoot       bool          `yaml:"allow_root" toml:"allow_root" json:"allow_root"`
	ServiceManager  string        `yaml:"service_manager,omitempty" toml:"service_manager,omitempty" json:"service_manager,omitempty"`
	ChunkSize       string        `yaml:"chunk_size,omitempty" toml:"chunk_size,omitempty" json:"chunk_size,omitempty"`
	HTTPTimeoutSec  float64       `yaml:"http_timeout_sec,omitempty" toml:"http_timeout_sec,omitempty" json:"http_timeout_sec,omitempty"`
}

// StagedFile pairs an extracted temp file with its final destination.
// Staged files are kept as an ordered slice; copy order is recording order.
type StagedFile struct {
	TempPath   string `json:"temp_path"`
	TargetPath string `json:"target_path"`
}
