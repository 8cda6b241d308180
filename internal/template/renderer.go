// Package template checks out Template repositories with go-git/v5 and
// renders their manifests for a Deployment, keeping a bounded LRU cache of
// checkouts (hashicorp/golang-lru/v2) keyed by repository and ref.
package template

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"text/template"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/orchestrator-core/controlplane/internal/apperr"
	"github.com/orchestrator-core/controlplane/internal/gitauth"
	"github.com/orchestrator-core/controlplane/internal/models"
)

// RenderedFile is one output of rendering a Template: a path relative to
// the Template's root and its rendered bytes.
type RenderedFile struct {
	RelativePath string
	Bytes        []byte
}

type cacheEntry struct {
	dir       string
	fetchedAt time.Time
}

// Renderer clones or updates Template repositories into a local cache
// directory and renders their files against a Binding.
type Renderer struct {
	cacheDir string
	sshKey   string

	cache *lru.Cache[string, *cacheEntry]

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New returns a Renderer whose working copies live under cacheDir, capped
// at maxEntries repositories (LRU-evicted). sshKeyPath authenticates
// clones of private repositories; empty disables SSH auth.
func New(cacheDir, sshKeyPath string, maxEntries int) (*Renderer, error) {
	cache, err := lru.NewWithEvict[string, *cacheEntry](maxEntries, func(key string, entry *cacheEntry) {
		_ = os.RemoveAll(entry.dir)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "creating template clone cache")
	}
	return &Renderer{
		cacheDir: cacheDir,
		sshKey:   sshKeyPath,
		cache:    cache,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

func cacheKey(repository, gitRef string) string {
	sum := sha256.Sum256([]byte(repository + "@" + gitRef))
	return hex.EncodeToString(sum[:])
}

// lockFor returns the mutex guarding concurrent renders of the same
// (repo, ref), per the concurrency model's "guarded by a per-(repo, ref)
// mutex so concurrent renders of the same ref do not race the working
// copy."
func (r *Renderer) lockFor(key string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	if m, ok := r.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	r.locks[key] = m
	return m
}

// checkout clones repository@gitRef into the cache directory if it is not
// cached. A cached copy is returned as is; it is never fetched again while
// it stays in the cache.
func (r *Renderer) checkout(ctx context.Context, repository, gitRef string) (string, error) {
	key := cacheKey(repository, gitRef)
	lock := r.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	if entry, ok := r.cache.Get(key); ok {
		return entry.dir, nil
	}

	dir := filepath.Join(r.cacheDir, key)
	if err := os.RemoveAll(dir); err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "clearing stale clone directory %s", dir)
	}

	cloneOpts := &git.CloneOptions{
		URL:           repository,
		Depth:         1,
		ReferenceName: plumbing.NewBranchReferenceName(gitRef),
		SingleBranch:  true,
	}
	if auth, err := gitauth.Load(r.sshKey); err != nil {
		return "", err
	} else if auth != nil {
		cloneOpts.Auth = auth
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, cloneOpts); err != nil {
		// gitRef may be a tag or a commit sha rather than a branch; retry
		// with a full clone and an explicit checkout.
		if err := os.RemoveAll(dir); err != nil {
			return "", apperr.Wrap(apperr.Internal, err, "clearing failed clone directory %s", dir)
		}
		repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: repository, Auth: cloneOpts.Auth})
		if err != nil {
			return "", apperr.Wrap(apperr.Unavailable, err, "cloning %s", repository)
		}
		wt, err := repo.Worktree()
		if err != nil {
			return "", apperr.Wrap(apperr.Internal, err, "opening worktree for %s", repository)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(gitRef)}); err != nil {
			if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewTagReferenceName(gitRef)}); err != nil {
				return "", apperr.Wrap(apperr.InvalidArgument, err, "checking out %s@%s", repository, gitRef)
			}
		}
	}

	r.cache.Add(key, &cacheEntry{dir: dir, fetchedAt: time.Now()})
	return dir, nil
}

// Render clones/updates tmpl's repository, reads every file under
// tmpl.Path, and executes each as a text/template against Namespace(b,
// effective), failing with InvalidArgument (MissingVariable) if any
// placeholder has no binding and isn't marked {{optional "name"}}.
func (r *Renderer) Render(ctx context.Context, tmpl models.Template, b Binding, effective map[string]models.Config) ([]RenderedFile, error) {
	dir, err := r.checkout(ctx, tmpl.Repository, tmpl.GitRef)
	if err != nil {
		return nil, err
	}

	return renderDir(filepath.Join(dir, tmpl.Path), b, effective)
}

// renderDir executes every file under root as a text/template, isolated
// from git so it can be exercised directly by tests.
//
// A placeholder is a bare {{.name}} read against the root namespace. Before
// executing a template, renderDir walks its parsed syntax tree to collect
// every such placeholder and every name passed to {{optional "name"}} — the
// one escape from the namespace's otherwise-required fields, evaluating to
// "" when absent instead of failing the render. Any required placeholder
// still missing from the namespace fails with InvalidArgument naming it
// (MissingVariable), before the template is ever executed.
func renderDir(root string, b Binding, effective map[string]models.Config) ([]RenderedFile, error) {
	var relPaths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPaths = append(relPaths, rel)
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidArgument, err, "reading template path %s", root)
	}
	sort.Strings(relPaths)

	ns := Namespace(b, effective)
	funcs := template.FuncMap{"optional": optionalLookup(ns)}

	out := make([]RenderedFile, 0, len(relPaths))
	for _, rel := range relPaths {
		raw, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "reading template file %s", rel)
		}

		tpl, err := template.New(rel).Funcs(funcs).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, apperr.Wrap(apperr.InvalidArgument, err, "parsing template file %s", rel)
		}

		required, optional := collectPlaceholders(tpl.Tree)
		names := make([]string, 0, len(required))
		for name := range required {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if optional[name] {
				continue
			}
			if _, ok := ns[name]; !ok {
				return nil, apperr.New(apperr.InvalidArgument, "rendering %s: no binding for placeholder %q (MissingVariable)", rel, name)
			}
		}

		var buf bytes.Buffer
		if err := tpl.Execute(&buf, ns); err != nil {
			return nil, apperr.New(apperr.InvalidArgument, "rendering %s: %s (MissingVariable)", rel, err)
		}
		out = append(out, RenderedFile{RelativePath: rel, Bytes: buf.Bytes()})
	}
	return out, nil
}
