// Package repository detects the project/repository root that a file
// belongs to, so the indexing pipeline can derive a stable RepoID instead
// of requiring the caller to supply one by hand.
package repository

import "golang.org/x/mod/modfile"

// Repository describes the VCS (or bare-directory) container a Project
// lives in.
type Repository struct {
	Kind   string
	Root   string
	Origin string
	Info   *Project
}

// Project represents a detected project root and the metadata used to
// derive a stable repo id and module FQN prefix for the IR builder.
type Project struct {
	RootPath     string // absolute path to the project root directory
	Type         string // go, java, javascript, python, rust, ...
	Name         string // extracted from go.mod/package.json/pom.xml/etc.
	RelativePath string // path from project root to the file that triggered detection
	GoModule     *modfile.Module
}
