package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/goccy/go-yaml"
	"github.com/muesli/coral"
	"github.com/srerickson/eark/backend/cloud"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/vocabulary"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/s3blob"
)

// storage drivers for repos
const (
	fileDriver  = "file"
	s3Driver    = "s3"
	azureDriver = "azure"
)

// Config is the eark configuration file.
type Config struct {
	// ReportDir is the directory validation reports are written to. If
	// empty, reports are written next to the package.
	ReportDir string `yaml:"report_dir,omitempty"`
	// Format is the report format: "json" or "yaml".
	Format string `yaml:"format,omitempty"`
	// Concurrency is the number of packages validated at once, and the
	// number of representations validated at once in each package.
	Concurrency int `yaml:"concurrency,omitempty"`
	// VocabularyDir holds vocabulary files replacing the built-in ones.
	VocabularyDir string                 `yaml:"vocabulary_dir,omitempty"`
	Repos         map[string]*RepoConfig `yaml:"repos,omitempty"`
}

// RepoConfig is a storage location packages can be read from.
type RepoConfig struct {
	Driver   string  `yaml:"driver"`
	Path     string  `yaml:"path,omitempty"`
	Bucket   *string `yaml:"bucket,omitempty"`
	Endpoint *string `yaml:"endpoint,omitempty"`
	Region   *string `yaml:"region,omitempty"`
}

var configFlags struct {
	save bool
}

var configCmd = &coral.Command{
	Use:   "config",
	Short: "Print the configuration",
	Long:  "Print the configuration, with command line overrides applied, as YAML.",
	RunE: func(cmd *coral.Command, args []string) error {
		conf, err := getConfig()
		if err != nil {
			log.Error(err, "can't load config", "file", rootFlags.cfgFile)
			return err
		}
		return printConfig(conf, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configFlags.save, "save", false, "also write the printed config to the config file")
}

func printConfig(conf *Config, out io.Writer) error {
	if configFlags.save {
		f, err := os.OpenFile(rootFlags.cfgFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			log.Error(err, "can't open config file for writing")
			return err
		}
		defer f.Close()
		out = io.MultiWriter(out, f)
		log.Info("saving config to file", "file", rootFlags.cfgFile)
	}
	if err := yaml.NewEncoder(out).Encode(conf); err != nil {
		log.Error(err, "error encoding or writing config")
		return err
	}
	return nil
}

// getConfig reads the config file and applies the root command's repo
// flags.
func getConfig() (*Config, error) {
	conf, err := readConfig(rootFlags.cfgFile)
	if err != nil {
		return nil, err
	}
	if rootFlags.repoName == "" {
		return conf, nil
	}
	repo := conf.Repo(rootFlags.repoName, true)
	if rootFlags.driver != "" {
		repo.Driver = rootFlags.driver
	}
	if rootFlags.driverPath != "" {
		repo.Path = rootFlags.driverPath
	}
	if rootFlags.driverBucket != "" {
		repo.Bucket = &rootFlags.driverBucket
	}
	return conf, nil
}

// readConfig reads the config file name. Defaults are used for settings
// missing from the file, or for all settings if it doesn't exist.
func readConfig(name string) (*Config, error) {
	conf := &Config{}
	data, err := os.ReadFile(name)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.V(1).Info("config file not found, using defaults", "file", name)
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", name, err)
	default:
		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", name, err)
		}
		log.V(1).Info("read config", "file", name)
	}
	if conf.Format == "" {
		conf.Format = string(validation.JSON)
	}
	if conf.Concurrency < 1 {
		conf.Concurrency = 1
	}
	if conf.Repos == nil {
		conf.Repos = map[string]*RepoConfig{}
	}
	return conf, nil
}

// Vocabularies returns the controlled vocabularies used for validation.
func (conf *Config) Vocabularies() (*vocabulary.Vocabularies, error) {
	if conf.VocabularyDir == "" {
		return vocabulary.Default(), nil
	}
	return vocabulary.Load(conf.VocabularyDir)
}

// Repo returns the named repo. If it doesn't exist and create is true, a
// repo for the current directory is added.
func (conf *Config) Repo(name string, create bool) *RepoConfig {
	repo := conf.Repos[name]
	if repo == nil && create {
		repo = &RepoConfig{Driver: fileDriver, Path: "."}
		conf.Repos[name] = repo
	}
	return repo
}

// NewFS returns the named repo's bucket as a cloud.FS. It must be closed.
func (conf *Config) NewFS(ctx context.Context, name string) (*cloud.FS, error) {
	repo := conf.Repo(name, false)
	if repo == nil {
		return nil, fmt.Errorf("no repo named '%s' in config", name)
	}
	bucket, err := repo.OpenBucket(ctx)
	if err != nil {
		return nil, fmt.Errorf("in '%s' storage driver: %w", repo.Driver, err)
	}
	return cloud.NewFS(bucket, cloud.WithLogger(log)), nil
}

// OpenBucket opens the repo's storage with its driver.
func (repo *RepoConfig) OpenBucket(ctx context.Context) (*blob.Bucket, error) {
	if repo.Driver == fileDriver {
		root, err := filepath.Abs(repo.Path)
		if err != nil {
			return nil, err
		}
		log.Info("storage backend settings", "driver", fileDriver, "root", root)
		return fileblob.OpenBucket(root, nil)
	}
	if repo.Bucket == nil {
		return nil, errors.New("'bucket' config is required")
	}
	name := *repo.Bucket
	switch repo.Driver {
	case s3Driver:
		sess, err := session.NewSession(&aws.Config{
			Region:   repo.Region,
			Endpoint: repo.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		log.Info("storage backend settings", "driver", s3Driver, "bucket", name)
		return s3blob.OpenBucket(ctx, sess, name, nil)
	case azureDriver:
		log.Info("storage backend settings", "driver", azureDriver, "container", name)
		return blob.OpenBucket(ctx, "azblob://"+name)
	}
	return nil, fmt.Errorf("invalid storage driver: '%s'", repo.Driver)
}
