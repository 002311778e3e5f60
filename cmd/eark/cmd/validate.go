package cmd

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/muesli/coral"
	"github.com/srerickson/eark/backend/local"
	"github.com/srerickson/eark/validation"
	"github.com/srerickson/eark/validator"
	"golang.org/x/sync/errgroup"
)

var validateFlags = struct {
	reportDir   string
	format      string
	concurrency int
}{}

var errInvalid = errors.New("one or more packages are not valid")

// validateCmd represents the validate command
var validateCmd = &coral.Command{
	Use:   "validate [package...]",
	Short: "Validates E-ARK information packages",
	Long: `Validates E-ARK information packages (ZIP files or folders) and writes a
validation report for each one. With --repo, package paths are read from the
repo's storage and validated as folders.`,
	Args: coral.MinimumNArgs(1),
	RunE: func(cmd *coral.Command, args []string) error {
		conf, err := getConfig()
		if err != nil {
			log.Error(err, "can't load config")
			return err
		}
		return runValidate(cmd.Context(), conf, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateFlags.reportDir, "output", "o", "", "directory for validation reports (default is the package's directory)")
	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "", "report format: json or yaml")
	validateCmd.Flags().IntVarP(&validateFlags.concurrency, "concurrency", "j", 0, "number of packages and representations validated at once")
}

// input is a package to validate with the validator's outcome.
type input struct {
	path       string
	report     *validation.Report
	reportFile string
	err        error
}

func (conf *Config) applyValidateFlags() {
	if validateFlags.reportDir != "" {
		conf.ReportDir = validateFlags.reportDir
	}
	if validateFlags.format != "" {
		conf.Format = validateFlags.format
	}
	if validateFlags.concurrency > 0 {
		conf.Concurrency = validateFlags.concurrency
	}
}

func runValidate(ctx context.Context, conf *Config, args []string, out io.Writer) error {
	conf.applyValidateFlags()
	format, err := validation.ParseFormat(conf.Format)
	if err != nil {
		log.Error(err, "invalid report format")
		return err
	}
	vocab, err := conf.Vocabularies()
	if err != nil {
		log.Error(err, "can't load vocabularies", "dir", conf.VocabularyDir)
		return err
	}
	baseOpts := []validator.Option{
		validator.WithLogger(log),
		validator.WithVocabularies(vocab),
		validator.WithConcurrency(conf.Concurrency),
	}
	// packages in a repo are validated as folders in the repo's bucket
	var newValidator func(name string, opts ...validator.Option) *validator.Validator
	if rootFlags.repoName != "" {
		fsys, err := conf.NewFS(ctx, rootFlags.repoName)
		if err != nil {
			log.Error(err, "could not initialize storage driver", "repo", rootFlags.repoName)
			return err
		}
		defer fsys.Close()
		newValidator = func(name string, opts ...validator.Option) *validator.Validator {
			opts = append(opts, validator.WithBackend(local.New(fsys, name)))
			return validator.New(name, opts...)
		}
	} else {
		newValidator = validator.New
	}
	date := time.Now()
	inputs := make([]*input, len(args))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(conf.Concurrency)
	for i, arg := range args {
		in := &input{path: arg}
		inputs[i] = in
		grp.Go(func() error {
			var lis validator.Listener = &validator.LogListener{Logger: log.WithName(in.path)}
			var prog *Progress
			if len(args) == 1 && rootFlags.verbose == 0 {
				prog = NewProgress(out, filepath.Base(in.path)+" ")
				lis = prog
			}
			opts := append([]validator.Option{validator.WithListeners(lis)}, baseOpts...)
			v := newValidator(in.path, opts...)
			validate := func() error {
				in.report, in.err = v.Validate(ctx)
				return in.err
			}
			var err error
			if prog != nil {
				err = prog.Start(validate)
			} else {
				err = validate()
			}
			if err != nil {
				return err
			}
			in.report.Log(log.WithName(in.path).V(1))
			in.reportFile, in.err = writeReport(conf.reportDir(in.path), packageName(in.path), date, format, in.report)
			if in.err != nil {
				log.Error(in.err, "can't write report", "package", in.path)
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		log.Error(err, "validation canceled")
		return err
	}
	printSummary(out, inputs)
	for _, in := range inputs {
		if in.err != nil || !in.report.Valid() {
			return errInvalid
		}
	}
	return nil
}

// reportDir returns the directory for the report of the package at name.
func (conf *Config) reportDir(name string) string {
	if conf.ReportDir != "" {
		return conf.ReportDir
	}
	if rootFlags.repoName != "" {
		return "."
	}
	return filepath.Dir(filepath.Clean(name))
}

// packageName is the name of the package file or folder, used in report
// names.
func packageName(name string) string {
	if rootFlags.repoName != "" {
		return path.Base(path.Clean(name))
	}
	return filepath.Base(filepath.Clean(name))
}
