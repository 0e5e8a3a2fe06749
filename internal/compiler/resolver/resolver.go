// Package resolver builds the scope tree (global/module/function/block),
// resolves the import graph, and binds every reference to its declaration,
// including method-resolution precedence (inherent > explicit-trait >
// glob-trait > extension). Generalizes the teacher's single-purpose
// recursive-import Resolver (its `loading map[string]bool` cycle guard and
// path-cache idiom) into a full name-binding pass over the whole program.
package resolver

import (
	"path/filepath"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/errors"
)

// MethodSource ranks where a method came from, used to break ties when more
// than one candidate method matches a call (spec.md Open Question 5,
// DESIGN.md decision: "collision is a resolver diagnostic, never a silent
// pick" unless ranks differ).
type MethodSource int

const (
	SourceInherent MethodSource = iota
	SourceExplicitTrait
	SourceGlobTrait
	SourceExtension
)

type MethodBinding struct {
	Decl   *ast.FuncDecl
	Source MethodSource
	Trait  string // trait name, empty for inherent impls
}

// TypeInfo collects everything the resolver knows about one named type.
type TypeInfo struct {
	Struct  *ast.StructDecl
	Enum    *ast.EnumDecl
	Methods map[string][]MethodBinding // method name -> all candidates, by source
}

// Scope is one level of the lexical scope tree (spec §4.4 "scope tree:
// global/module/function/block/handler").
type Scope struct {
	Kind    string // "global" | "module" | "function" | "block" | "handler"
	Parent  *Scope
	Symbols map[string]bool
}

func newScope(kind string, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent, Symbols: map[string]bool{}}
}

func (s *Scope) declare(name string) { s.Symbols[name] = true }

func (s *Scope) resolves(name string) bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Symbols[name] {
			return true
		}
	}
	return false
}

// Program is the fully-resolved, import-merged output of this package.
type Program struct {
	Main   *ast.File
	Types  map[string]*TypeInfo
	Funcs  map[string]*ast.FuncDecl
	Actors map[string]*ast.ActorDecl
}

// FileLoader reads and parses one module path into a surface AST, supplied
// by the driver so the resolver itself never touches the filesystem.
type FileLoader func(path string) (*ast.File, error)

type Resolver struct {
	basePath string
	parsed   map[string]*ast.File
	loading  map[string]bool // cycle guard, grounded on the teacher's resolver
	diags    *errors.List
	load     FileLoader
}

func New(basePath string, load FileLoader) *Resolver {
	return &Resolver{
		basePath: basePath,
		parsed:   map[string]*ast.File{},
		loading:  map[string]bool{},
		diags:    errors.NewList(),
		load:     load,
	}
}

func (r *Resolver) Diagnostics() *errors.List { return r.diags }

// Resolve merges imports into one Program, then builds the type/method
// registry, then walks every function body binding references.
func (r *Resolver) Resolve(main *ast.File, mainPath string) *Program {
	merged := &ast.File{}
	merged.Decls = append(merged.Decls, main.Decls...)
	r.mergeImports(main, filepath.Dir(mainPath), merged, map[string]bool{})

	prog := &Program{
		Main:   merged,
		Types:  map[string]*TypeInfo{},
		Funcs:  map[string]*ast.FuncDecl{},
		Actors: map[string]*ast.ActorDecl{},
	}
	r.collectDecls(merged, prog)
	r.bindReferences(merged, prog)
	return prog
}

// mergeImports walks the import graph depth-first, detecting cycles via
// `loading` exactly as the teacher's resolveImport does, and appends every
// transitively-imported file's declarations into dst.
func (r *Resolver) mergeImports(f *ast.File, dir string, dst *ast.File, seen map[string]bool) {
	for _, imp := range f.Imports {
		absPath := filepath.Clean(filepath.Join(dir, imp.Path))
		if r.loading[absPath] {
			r.diags.Addf("resolver", "CyclicImport", 0, 0, "import cycle detected at %s", imp.Path)
			continue
		}
		if seen[absPath] {
			continue
		}
		seen[absPath] = true

		cached, ok := r.parsed[absPath]
		if !ok {
			if r.load == nil {
				r.diags.Addf("resolver", "UnresolvedImport", 0, 0, "no loader configured for import %s", imp.Path)
				continue
			}
			loaded, err := r.load(absPath)
			if err != nil {
				r.diags.Addf("resolver", "UnresolvedImport", 0, 0, "cannot load %s: %v", imp.Path, err)
				continue
			}
			cached = loaded
			r.parsed[absPath] = cached
		}

		r.loading[absPath] = true
		dst.Decls = append(dst.Decls, cached.Decls...)
		r.mergeImports(cached, filepath.Dir(absPath), dst, seen)
		delete(r.loading, absPath)
	}
}

// collectDecls registers every top-level declaration, including the
// inherent/trait/impl method registry with source-precedence tags.
//
// The first pass gathers the context collectDecls.methodSource needs before
// classifying a single ImplDecl: which type names this file declares itself
// (locals, vs. a foreign/builtin type an impl block merely extends) and
// which trait names were brought into scope by name (`import {Trait}`) as
// opposed to only through a glob `import *`.
func (r *Resolver) collectDecls(f *ast.File, prog *Program) {
	localTypes := map[string]bool{}
	explicitTraitNames := map[string]bool{}
	globImported := false

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.StructDecl:
			localTypes[d.Name] = true
		case *ast.EnumDecl:
			localTypes[d.Name] = true
		case *ast.ImportDecl:
			if d.Glob {
				globImported = true
				continue
			}
			for _, m := range d.Members {
				explicitTraitNames[m] = true
			}
			if d.Default != "" {
				explicitTraitNames[d.Default] = true
			}
		}
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if _, dup := prog.Funcs[d.Name]; dup {
				r.diags.Addf("resolver", "DuplicateDecl", 0, 0, "function %q declared more than once", d.Name)
			}
			prog.Funcs[d.Name] = d
		case *ast.StructDecl:
			r.typeInfo(prog, d.Name).Struct = d
		case *ast.EnumDecl:
			r.typeInfo(prog, d.Name).Enum = d
		case *ast.ActorDecl:
			prog.Actors[d.Name] = d
		case *ast.ImplDecl:
			info := r.typeInfo(prog, d.TargetType)
			source := r.methodSource(d, localTypes, explicitTraitNames, globImported)
			for _, m := range d.Methods {
				info.Methods[m.Name] = append(info.Methods[m.Name], MethodBinding{Decl: m, Source: source, Trait: d.TraitName})
			}
		case *ast.TraitDecl:
			// trait declarations are not registered here, and no later
			// stage looks up their default method bodies.
		}
	}
	r.checkMethodCollisions(prog)
}

// methodSource classifies one impl block into its precedence tier (spec.md
// Open Question 5: inherent > explicit-trait > glob-trait > extension).
// A trait impl ranks as explicit when its trait name was named directly by
// an import (or the impl lives in a file with no glob import at all to
// compete with); it's demoted to glob-trait only when the file reached the
// trait purely through `import *` without also naming it. An impl with no
// trait at all is inherent when it targets a type this file declares, and
// an extension method when it targets a type it doesn't own.
func (r *Resolver) methodSource(d *ast.ImplDecl, localTypes, explicitTraitNames map[string]bool, globImported bool) MethodSource {
	if d.TraitName != "" {
		if explicitTraitNames[d.TraitName] || !globImported {
			return SourceExplicitTrait
		}
		return SourceGlobTrait
	}
	if localTypes[d.TargetType] {
		return SourceInherent
	}
	return SourceExtension
}

func (r *Resolver) typeInfo(prog *Program, name string) *TypeInfo {
	if info, ok := prog.Types[name]; ok {
		return info
	}
	info := &TypeInfo{Methods: map[string][]MethodBinding{}}
	prog.Types[name] = info
	return info
}

// checkMethodCollisions enforces DESIGN.md's decision: two candidates at
// the SAME precedence tier for one type+method is an AmbiguousMethod
// diagnostic; differing tiers are resolved silently by rank at call time.
func (r *Resolver) checkMethodCollisions(prog *Program) {
	for typeName, info := range prog.Types {
		for methodName, candidates := range info.Methods {
			bySource := map[MethodSource]int{}
			for _, c := range candidates {
				bySource[c.Source]++
			}
			for source, count := range bySource {
				if count > 1 {
					r.diags.Addf("resolver", "AmbiguousMethod", 0, 0,
						"type %q has %d methods named %q at the same resolution tier (%d)",
						typeName, count, methodName, source)
				}
			}
		}
	}
}

// ResolveMethod picks the highest-precedence candidate for a call site,
// per DESIGN.md's inherent > explicit-trait > glob-trait > extension order.
func (info *TypeInfo) ResolveMethod(name string) (*ast.FuncDecl, bool) {
	candidates := info.Methods[name]
	if len(candidates) == 0 {
		return nil, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Source < best.Source {
			best = c
		}
	}
	return best.Decl, true
}

// bindReferences walks every function/method/handler body building a
// function scope under the global scope, then a fresh block scope per
// nested ast.BlockStmt, reporting unresolved identifiers.
func (r *Resolver) bindReferences(f *ast.File, prog *Program) {
	global := newScope("global", nil)
	for name := range prog.Funcs {
		global.declare(name)
	}
	for name := range prog.Types {
		global.declare(name)
	}
	for name := range prog.Actors {
		global.declare(name)
	}
	for _, builtin := range builtinNames {
		global.declare(builtin)
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			r.bindFuncDecl(d, global)
		case *ast.ImplDecl:
			for _, m := range d.Methods {
				r.bindFuncDecl(m, global)
			}
		case *ast.ActorDecl:
			actorScope := newScope("module", global)
			for _, field := range d.Fields {
				actorScope.declare(field.Name)
			}
			for _, h := range d.Handlers {
				r.bindFuncDecl(h, actorScope)
			}
		case *ast.LetStmt:
			global.declare(d.Name)
		}
	}
}

var builtinNames = []string{
	"print", "println", "len", "push", "pop", "map", "filter", "reduce",
	"range", "assert", "panic", "type_of", "Ok", "Err", "Some", "None",
}

func (r *Resolver) bindFuncDecl(d *ast.FuncDecl, parent *Scope) {
	fnScope := newScope("function", parent)
	for _, p := range d.Params {
		fnScope.declare(p.Name)
	}
	if d.Body != nil {
		r.bindBlock(d.Body, fnScope)
	}
}

func (r *Resolver) bindBlock(b *ast.BlockStmt, parent *Scope) {
	blockScope := newScope("block", parent)
	for _, stmt := range b.Stmts {
		r.bindStmt(stmt, blockScope)
	}
}

func (r *Resolver) bindStmt(s ast.Statement, scope *Scope) {
	switch st := s.(type) {
	case *ast.LetStmt:
		r.bindExpr(st.Value, scope)
		scope.declare(st.Name)
	case *ast.AssignStmt:
		r.bindExpr(st.Target, scope)
		r.bindExpr(st.Value, scope)
	case *ast.ExprStmt:
		r.bindExpr(st.X, scope)
	case *ast.ReturnStmt:
		if st.Value != nil {
			r.bindExpr(st.Value, scope)
		}
	case *ast.ThrowStmt:
		r.bindExpr(st.Value, scope)
	case *ast.IfStmt:
		r.bindExpr(st.Cond, scope)
		r.bindBlock(st.Then, scope)
		if st.ElseIf != nil {
			r.bindStmt(st.ElseIf, scope)
		}
		if st.Else != nil {
			r.bindBlock(st.Else, scope)
		}
	case *ast.ForStmt:
		r.bindExpr(st.Iterable, scope)
		loopScope := newScope("block", scope)
		loopScope.declare(st.VarName)
		r.bindBlock(st.Body, loopScope)
	case *ast.WhileStmt:
		r.bindExpr(st.Cond, scope)
		r.bindBlock(st.Body, scope)
	case *ast.LoopStmt:
		r.bindBlock(st.Body, scope)
	case *ast.TryCatchStmt:
		r.bindBlock(st.Body, scope)
		for _, c := range st.Catches {
			catchScope := newScope("block", scope)
			r.declarePattern(c.Pattern, catchScope)
			r.bindBlock(c.Body, catchScope)
		}
		if st.Finally != nil {
			r.bindBlock(st.Finally, scope)
		}
	case *ast.BlockStmt:
		r.bindBlock(st, scope)
	case *ast.FuncDecl:
		r.bindFuncDecl(st, scope)
	}
}

func (r *Resolver) declarePattern(p ast.Pattern, scope *Scope) {
	switch pat := p.(type) {
	case *ast.IdentPattern:
		scope.declare(pat.Name)
	case *ast.AtBindingPattern:
		scope.declare(pat.Name)
		r.declarePattern(pat.Pattern, scope)
	case *ast.TuplePattern:
		for _, e := range pat.Elements {
			r.declarePattern(e, scope)
		}
	case *ast.ListPattern:
		for _, e := range pat.Elements {
			r.declarePattern(e, scope)
		}
		if pat.Rest != nil && pat.Rest.Name != "" {
			scope.declare(pat.Rest.Name)
		}
	case *ast.StructPattern:
		for _, f := range pat.Fields {
			if f.Pattern != nil {
				r.declarePattern(f.Pattern, scope)
			} else {
				scope.declare(f.Name)
			}
		}
	case *ast.VariantPattern:
		for _, e := range pat.Payload {
			r.declarePattern(e, scope)
		}
	case *ast.OrPattern:
		for _, alt := range pat.Alternatives {
			r.declarePattern(alt, scope)
		}
	}
}

func (r *Resolver) bindExpr(e ast.Expression, scope *Scope) {
	switch x := e.(type) {
	case *ast.Ident:
		if !scope.resolves(x.Name) {
			r.diags.Addf("resolver", "UnresolvedReference", x.Span().Line, 0, "undefined name %q", x.Name)
		}
	case *ast.BinaryExpr:
		r.bindExpr(x.Left, scope)
		r.bindExpr(x.Right, scope)
	case *ast.UnaryExpr:
		r.bindExpr(x.Operand, scope)
	case *ast.CallExpr:
		r.bindExpr(x.Callee, scope)
		for _, a := range x.Args {
			r.bindExpr(a, scope)
		}
	case *ast.MemberExpr:
		r.bindExpr(x.Receiver, scope)
	case *ast.IndexExpr:
		r.bindExpr(x.X, scope)
		r.bindExpr(x.Index, scope)
	case *ast.RangeExpr:
		r.bindExpr(x.Start, scope)
		r.bindExpr(x.End, scope)
	case *ast.ListLit:
		for _, el := range x.Elements {
			r.bindExpr(el, scope)
		}
	case *ast.TupleLit:
		for _, el := range x.Elements {
			r.bindExpr(el, scope)
		}
	case *ast.SetLit:
		for _, el := range x.Elements {
			r.bindExpr(el, scope)
		}
	case *ast.ObjectLit:
		for _, f := range x.Fields {
			r.bindExpr(f.Value, scope)
		}
	case *ast.StructLit:
		for _, f := range x.Fields {
			r.bindExpr(f.Value, scope)
		}
	case *ast.IfExpr:
		r.bindExpr(x.Cond, scope)
		r.bindExpr(x.Then, scope)
		if x.Else != nil {
			r.bindExpr(x.Else, scope)
		}
	case *ast.MatchExpr:
		r.bindExpr(x.Subject, scope)
		for _, arm := range x.Arms {
			armScope := newScope("block", scope)
			r.declarePattern(arm.Pattern, armScope)
			if arm.Guard != nil {
				r.bindExpr(arm.Guard, armScope)
			}
			r.bindExpr(arm.Body, armScope)
		}
	case *ast.TryExpr:
		r.bindExpr(x.X, scope)
	case *ast.PipelineExpr:
		r.bindExpr(x.Left, scope)
		r.bindExpr(x.Right, scope)
	case *ast.SpawnExpr:
		r.bindExpr(x.Body, scope)
	case *ast.ActorSendExpr:
		r.bindExpr(x.Actor, scope)
		r.bindExpr(x.Message, scope)
	case *ast.ActorQueryExpr:
		r.bindExpr(x.Actor, scope)
		r.bindExpr(x.Message, scope)
	case *ast.AwaitExpr:
		r.bindExpr(x.X, scope)
	case *ast.OkExpr:
		r.bindExpr(x.Value, scope)
	case *ast.ErrExpr:
		r.bindExpr(x.Value, scope)
	case *ast.SomeExpr:
		r.bindExpr(x.Value, scope)
	case *ast.LambdaExpr:
		lamScope := newScope("function", scope)
		for _, p := range x.Params {
			lamScope.declare(p.Name)
		}
		switch body := x.Body.(type) {
		case *ast.BlockStmt:
			r.bindBlock(body, lamScope)
		case ast.Expression:
			r.bindExpr(body, lamScope)
		}
	case *ast.FStringLit:
		for _, part := range x.Parts {
			if part.IsExpr {
				r.bindExpr(part.Expr, scope)
			}
		}
	}
}
