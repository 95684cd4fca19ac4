package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	compactpdf "github.com/alnah/go-compactpdf"
	"github.com/alnah/go-compactpdf/internal/fileutil"
)

// stdinArg is the argument that selects standard input.
const stdinArg = "-"

// Sentinel errors for input discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoMarkdownFiles    = errors.New("no markdown files found")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrOutputConflict     = errors.New("output file given for several inputs")
	ErrReadMarkdown       = errors.New("failed to read markdown")
)

// FileToConvert represents a single document to process. Content is set
// for standard input only.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	Content    []byte
	FromStdin  bool
}

// displayName is the input name shown in results.
func (f FileToConvert) displayName() string {
	if f.FromStdin {
		return "<stdin>"
	}
	return f.InputPath
}

// collectFiles expands every input argument into documents to convert.
// output is a .pdf file or a directory; empty means next to each source.
func collectFiles(inputs []string, output string, stdin io.Reader, now time.Time) ([]FileToConvert, error) {
	var files []FileToConvert
	seenStdin := false

	for _, in := range inputs {
		if in == stdinArg {
			if seenStdin {
				return nil, fmt.Errorf("%w: standard input given twice", ErrUsage)
			}
			seenStdin = true
			f, err := stdinFile(stdin, output, now)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			continue
		}

		found, err := discoverFiles(in, output)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoMarkdownFiles, strings.Join(inputs, ", "))
	}
	if isPDFPath(output) && len(files) > 1 {
		return nil, fmt.Errorf("%w: %s receives %d documents", ErrOutputConflict, output, len(files))
	}
	return files, nil
}

// stdinFile reads all of standard input. Its output defaults to a
// timestamped name in the output directory.
func stdinFile(r io.Reader, output string, now time.Time) (FileToConvert, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return FileToConvert{}, fmt.Errorf("%w: standard input: %v", ErrReadMarkdown, err)
	}

	outPath := output
	if !isPDFPath(output) {
		outPath = filepath.Join(output, fileutil.StdinOutputName(now))
	}
	return FileToConvert{
		InputPath:  stdinArg,
		OutputPath: outPath,
		Content:    content,
		FromStdin:  true,
	}, nil
}

// discoverFiles finds all markdown files under inputPath.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.IsMarkdown(path) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the PDF output path for a markdown file.
// Files found under baseInputDir keep their relative layout in outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	name := fileutil.ReplaceExt(filepath.Base(inputPath), ".pdf")

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), name)
	}

	if isPDFPath(outputDir) {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), name)
		}
	}

	return filepath.Join(outputDir, name)
}

// isPDFPath reports whether path names a PDF file rather than a directory.
func isPDFPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !fileutil.IsMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > compactpdf.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, compactpdf.MaxPoolSize)
	}
	return nil
}
