// Package compiledb loads compilation databases (compile_commands.json):
// the array of per-file compiler invocations produced by the build system,
// used to reproduce accurate parse context for each translation unit.
package compiledb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMalformedDatabase is returned when the document cannot be parsed as
// the expected array-of-objects schema. Fatal: the whole run aborts before
// any file is parsed.
var ErrMalformedDatabase = errors.New("malformed compilation database")

// ErrMissingFile marks a database entry whose source file does not exist on
// disk. Per-file: the entry is skipped and reported, the run continues.
var ErrMissingFile = errors.New("source file does not exist")

// ParseJob is one translation unit to parse: the source file, the build
// directory, and the compile arguments with the compiler argv[0] stripped.
type ParseJob struct {
	File      string
	Directory string
	Args      []string
}

// EntryError records a database entry that could not be turned into a job.
type EntryError struct {
	File string // as listed in the database; may be empty
	Err  error
}

func (e EntryError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e EntryError) Unwrap() error { return e.Err }

// entry mirrors one compilation database object. Exactly one of Command
// and Arguments is expected per the format.
type entry struct {
	Directory string   `json:"directory"`
	Command   string   `json:"command"`
	Arguments []string `json:"arguments"`
	File      string   `json:"file"`
}

// Load reads a compilation database and returns its parse jobs in document
// order, plus per-entry errors for entries that were skipped (missing
// source file, no usable command). A document that is not a JSON array of
// objects fails the whole load with ErrMalformedDatabase.
func Load(path string) ([]ParseJob, []EntryError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read compilation database: %w", err)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformedDatabase, path, err)
	}

	var jobs []ParseJob
	var failures []EntryError
	for _, ent := range entries {
		job, err := ent.toJob()
		if err != nil {
			failures = append(failures, EntryError{File: ent.File, Err: err})
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, failures, nil
}

// toJob validates one entry and extracts its compile arguments.
func (ent entry) toJob() (ParseJob, error) {
	if ent.File == "" {
		return ParseJob{}, fmt.Errorf("%w: entry has no file field", ErrMalformedDatabase)
	}

	file := ent.File
	if !filepath.IsAbs(file) && ent.Directory != "" {
		file = filepath.Join(ent.Directory, file)
	}
	if _, err := os.Stat(file); err != nil {
		return ParseJob{}, fmt.Errorf("%w: %s", ErrMissingFile, file)
	}

	args, err := ent.compileArgs()
	if err != nil {
		return ParseJob{}, err
	}

	return ParseJob{
		File:      file,
		Directory: ent.Directory,
		Args:      args,
	}, nil
}

// compileArgs normalizes the two database forms. For "command" the string
// is whitespace-split and the compiler name dropped; for "arguments" the
// compiler name and a trailing element naming the source file are dropped.
func (ent entry) compileArgs() ([]string, error) {
	switch {
	case ent.Command != "":
		fields := strings.Fields(ent.Command)
		if len(fields) < 1 {
			return nil, fmt.Errorf("%w: empty command", ErrMalformedDatabase)
		}
		return trimFileArg(fields[1:], ent.File), nil
	case len(ent.Arguments) > 0:
		return trimFileArg(ent.Arguments[1:], ent.File), nil
	default:
		return nil, fmt.Errorf("%w: entry has neither command nor arguments", ErrMalformedDatabase)
	}
}

// trimFileArg drops a trailing argument that just repeats the source file.
func trimFileArg(args []string, file string) []string {
	if n := len(args); n > 0 && (args[n-1] == file || filepath.Base(args[n-1]) == filepath.Base(file)) {
		return args[:n-1]
	}
	return args
}

// IncludeDirs extracts -I include directories from compile arguments,
// resolved against the job's build directory. Used to locate included
// headers on disk for provenance.
func (j ParseJob) IncludeDirs() []string {
	dirs := []string{j.Directory}
	args := j.Args
	for i := 0; i < len(args); i++ {
		var dir string
		switch {
		case args[i] == "-I" && i+1 < len(args):
			dir = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-I"):
			dir = strings.TrimPrefix(args[i], "-I")
		default:
			continue
		}
		if !filepath.IsAbs(dir) && j.Directory != "" {
			dir = filepath.Join(j.Directory, dir)
		}
		dirs = append(dirs, dir)
	}
	return dirs
}
