package tools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/dddabtc/winremote-mcp/internal/errors"
)

// PathPolicy restricts file tool access to paths matching configured glob
// patterns. An empty policy allows any path.
type PathPolicy struct {
	patterns []glob.Glob
	raw      []string
}

// NewPathPolicy compiles the given glob patterns. Patterns match against
// slash-separated absolute paths, e.g. "/home/agent/**" or "/tmp/*".
func NewPathPolicy(patterns []string) (*PathPolicy, error) {
	p := &PathPolicy{raw: patterns}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: invalid path pattern %q: %v", errors.ErrInvalidInput, pattern, err)
		}
		p.patterns = append(p.patterns, g)
	}
	return p, nil
}

// Check resolves the path to absolute form and verifies it against the
// policy. It returns the resolved path.
func (p *PathPolicy) Check(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	if len(p.patterns) == 0 {
		return abs, nil
	}
	candidate := filepath.ToSlash(abs)
	for _, g := range p.patterns {
		if g.Match(candidate) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("path %q is outside the allowed paths", abs)
}

// fileTools bundles the file operation handlers around one path policy.
type fileTools struct {
	policy *PathPolicy
}

// maxReadBytes caps FileRead output so one oversized file cannot blow up
// a response.
const maxReadBytes = 1 << 20 // 1MB

func (f *fileTools) read(_ context.Context, args map[string]any) (string, error) {
	path, err := stringArg(args, "path", true)
	if err != nil {
		return "", err
	}
	abs, err := f.policy.Check(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", abs, err)
	}
	if len(data) > maxReadBytes {
		return string(data[:maxReadBytes]) + fmt.Sprintf("\n[truncated at %d bytes]", maxReadBytes), nil
	}
	return string(data), nil
}

func (f *fileTools) write(_ context.Context, args map[string]any) (string, error) {
	path, err := stringArg(args, "path", true)
	if err != nil {
		return "", err
	}
	content, err := stringArg(args, "content", false)
	if err != nil {
		return "", err
	}
	appendMode, err := boolArg(args, "append", false)
	if err != nil {
		return "", err
	}
	abs, err := f.policy.Check(path)
	if err != nil {
		return "", err
	}

	if appendMode {
		file, err := os.OpenFile(abs, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", abs, err)
		}
		defer file.Close()
		if _, err := file.WriteString(content); err != nil {
			return "", fmt.Errorf("append %s: %w", abs, err)
		}
		return fmt.Sprintf("Appended %d bytes to %s", len(content), abs), nil
	}

	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", abs, err)
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(content), abs), nil
}

func (f *fileTools) list(_ context.Context, args map[string]any) (string, error) {
	path, err := stringArg(args, "path", false)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = "."
	}
	showHidden, err := boolArg(args, "show_hidden", false)
	if err != nil {
		return "", err
	}
	abs, err := f.policy.Check(path)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", abs, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", abs)
	for _, entry := range entries {
		name := entry.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			fmt.Fprintf(&sb, "  %s/\n", name)
			continue
		}
		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(&sb, "  %s\n", name)
			continue
		}
		fmt.Fprintf(&sb, "  %s  %d\n", name, info.Size())
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (f *fileTools) search(ctx context.Context, args map[string]any) (string, error) {
	pattern, err := stringArg(args, "pattern", true)
	if err != nil {
		return "", err
	}
	root, err := stringArg(args, "path", false)
	if err != nil {
		return "", err
	}
	if root == "" {
		root = "."
	}
	recursive, err := boolArg(args, "recursive", true)
	if err != nil {
		return "", err
	}
	limit, err := intArg(args, "limit", 50)
	if err != nil {
		return "", err
	}
	abs, err := f.policy.Check(root)
	if err != nil {
		return "", err
	}

	var matches []string
	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries rather than aborting
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if !recursive && path != abs {
				return fs.SkipDir
			}
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			matches = append(matches, path)
			if len(matches) >= limit {
				return fs.SkipAll
			}
		}
		return nil
	})
	if walkErr != nil {
		return "", walkErr
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No files matching %q under %s", pattern, abs), nil
	}
	sort.Strings(matches)
	return fmt.Sprintf("%d match(es):\n%s", len(matches), strings.Join(matches, "\n")), nil
}
