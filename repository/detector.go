package repository

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// Detector walks up from a file path looking for the nearest project root
// marker, then derives a stable name usable as a build.Builder RepoID.
type Detector struct {
	markers []string
}

// New creates a Detector recognizing the common project root markers
// across the languages this indexer parses plus a few more the pack's
// source trees are likely to contain.
func New() *Detector {
	return &Detector{
		markers: []string{
			"go.mod",
			"pom.xml",
			"build.gradle",
			"package.json",
			"composer.json",
			"Cargo.toml",
			"pyproject.toml",
			"requirements.txt",
			"Gemfile",
			".git",
		},
	}
}

// DetectProject identifies the project root for filePath and returns its
// type, name, and the file's path relative to that root.
func (d *Detector) DetectProject(filePath string, baseURL ...string) (*Project, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}

	startDir := absPath
	fileInfo, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !fileInfo.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	rootPath, projectType := d.findProjectRoot(startDir)

	info := &Project{Type: "unknown", RootPath: absPath}
	if rootPath == "" && len(baseURL) > 0 && baseURL[0] != "" {
		info.RootPath = baseURL[0]
	} else if rootPath != "" {
		info.RootPath = rootPath
		info.Type = projectType
	}

	relPath, err := filepath.Rel(info.RootPath, absPath)
	if err != nil {
		relPath = filepath.Base(absPath)
	}
	info.RelativePath = filepath.ToSlash(relPath)

	if projectType != "" {
		info.Name = d.extractProjectName(rootPath, projectType)
	}
	return info, nil
}

// DetectRepository identifies the VCS root (git, or a bare project
// directory when no .git is present) containing filePath.
func (d *Detector) DetectRepository(filePath string) (*Repository, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}

	startDir := absPath
	fileInfo, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !fileInfo.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	if gitRoot := d.findGitRoot(startDir); gitRoot != "" {
		repo := &Repository{Kind: "git", Root: gitRoot, Origin: d.extractGitOrigin(gitRoot)}
		if info, err := d.DetectProject(filePath); err == nil {
			repo.Info = info
		}
		return repo, nil
	}

	info, err := d.DetectProject(filePath)
	if err != nil {
		return nil, err
	}
	return &Repository{Kind: info.Type, Root: info.RootPath, Info: info}, nil
}

func (d *Detector) findProjectRoot(startDir string) (string, string) {
	dir := startDir
	for {
		for _, marker := range d.markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, determineProjectType(marker)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ""
}

func (d *Detector) findGitRoot(startDir string) string {
	dir := startDir
	homeDir := os.Getenv("HOME")
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if homeDir == parent {
			return ""
		}
		dir = parent
	}
	return ""
}

func (d *Detector) extractGitOrigin(gitRoot string) string {
	configPath := filepath.Join(gitRoot, ".git", "config")
	file, err := os.Open(configPath)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	foundRemote := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, `[remote "origin"]`) {
			foundRemote = true
			continue
		}
		if foundRemote && strings.HasPrefix(line, "url = ") {
			return strings.TrimPrefix(line, "url = ")
		}
	}
	return ""
}

func (d *Detector) extractProjectName(rootPath, projectType string) string {
	switch projectType {
	case "go":
		return extractGoModuleName(filepath.Join(rootPath, "go.mod"))
	case "javascript":
		return extractJSPackageName(filepath.Join(rootPath, "package.json"))
	case "java":
		if name := extractMavenProjectName(filepath.Join(rootPath, "pom.xml")); name != "" {
			return name
		}
		return extractGradleProjectName(filepath.Join(rootPath, "build.gradle"))
	case "python":
		if name := extractPyProjectName(filepath.Join(rootPath, "pyproject.toml")); name != "" {
			return name
		}
		return extractPythonPackageName(rootPath)
	case "rust":
		return extractCargoProjectName(filepath.Join(rootPath, "Cargo.toml"))
	case "git":
		return extractGitProjectName(rootPath)
	default:
		return filepath.Base(rootPath)
	}
}

func extractGoModuleName(goModPath string) string {
	fs := afs.New()
	if content, _ := fs.DownloadWithURL(context.Background(), goModPath); len(content) > 0 {
		if mod, _ := modfile.Parse(goModPath, content, nil); mod != nil {
			return mod.Module.Mod.Path
		}
	}
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return filepath.Base(filepath.Dir(goModPath))
	}
	matches := regexp.MustCompile(`module\s+([^\s]+)`).FindSubmatch(data)
	if len(matches) < 2 {
		return filepath.Base(filepath.Dir(goModPath))
	}
	return string(matches[1])
}

func extractJSPackageName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return filepath.Base(filepath.Dir(path))
	}
	matches := regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`).FindSubmatch(data)
	if len(matches) < 2 {
		return filepath.Base(filepath.Dir(path))
	}
	return string(matches[1])
}

func extractMavenProjectName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	matches := regexp.MustCompile(`<artifactId>([^<]+)</artifactId>`).FindSubmatch(data)
	if len(matches) < 2 {
		return ""
	}
	return string(matches[1])
}

func extractGradleProjectName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return filepath.Base(filepath.Dir(path))
	}
	matches := regexp.MustCompile(`(?:rootProject|project)\.name\s*=\s*['"]([^'"]+)['"]`).FindSubmatch(data)
	if len(matches) < 2 {
		return filepath.Base(filepath.Dir(path))
	}
	return string(matches[1])
}

func extractPyProjectName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	matches := regexp.MustCompile(`(?:tool\.poetry|project)\.name\s*=\s*["']([^"']+)["']`).FindSubmatch(data)
	if len(matches) < 2 {
		return ""
	}
	return string(matches[1])
}

func extractPythonPackageName(rootPath string) string {
	setupPath := filepath.Join(rootPath, "setup.py")
	if data, err := os.ReadFile(setupPath); err == nil {
		matches := regexp.MustCompile(`name\s*=\s*["']([^"']+)["']`).FindSubmatch(data)
		if len(matches) >= 2 {
			return string(matches[1])
		}
	}
	return filepath.Base(rootPath)
}

func extractCargoProjectName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return filepath.Base(filepath.Dir(path))
	}
	matches := regexp.MustCompile(`\[package\](?:.|\n)*?name\s*=\s*["']([^"']+)["']`).FindSubmatch(data)
	if len(matches) < 2 {
		return filepath.Base(filepath.Dir(path))
	}
	return string(matches[1])
}

func extractGitProjectName(gitRoot string) string {
	configPath := filepath.Join(gitRoot, ".git", "config")
	if file, err := os.Open(configPath); err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		foundRemote := false
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if strings.Contains(line, `[remote "origin"]`) {
				foundRemote = true
				continue
			}
			if foundRemote && strings.HasPrefix(line, "url = ") {
				url := strings.TrimSuffix(strings.TrimPrefix(line, "url = "), ".git")
				parts := strings.Split(url, "/")
				if len(parts) > 0 {
					return parts[len(parts)-1]
				}
				break
			}
		}
	}
	return filepath.Base(gitRoot)
}

func determineProjectType(marker string) string {
	switch marker {
	case "go.mod":
		return "go"
	case "pom.xml", "build.gradle":
		return "java"
	case "package.json":
		return "javascript"
	case "Cargo.toml":
		return "rust"
	case "pyproject.toml", "requirements.txt":
		return "python"
	case "Gemfile":
		return "ruby"
	case "composer.json":
		return "php"
	case ".git":
		return "git"
	default:
		return "unknown"
	}
}
