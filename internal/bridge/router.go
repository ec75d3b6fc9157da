// Package bridge is the request boundary: it exposes the bridge's
// operations as MCP tools over stdio, translating stateless request
// envelopes into calls against the engine collaborator surface. Every reply
// is a JSON envelope; taxonomy errors come back as error envelopes with a
// stable code, never as transport failures.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"crb/internal/capability"
	"crb/internal/diag"
	"crb/internal/engine"
	"crb/internal/envelope"
	"crb/internal/errors"
	"crb/internal/exec"
	"crb/internal/logging"
	"crb/internal/resolve"
	"crb/internal/workspace"
)

// DefaultDiagnosticsLimit caps a diagnostics reply when the request does
// not specify a limit.
const DefaultDiagnosticsLimit = 100

// Options tunes the router.
type Options struct {
	// Timeout bounds each mutating operation; zero means the executor
	// default.
	Timeout time.Duration

	// DiagnosticsLimit is the default result cap for get_diagnostics.
	DiagnosticsLimit int
}

// Router owns the tool handlers and the components they delegate to.
type Router struct {
	host     engine.Host
	projects *workspace.Disambiguator
	resolver *resolve.Resolver
	registry *capability.Registry
	executor *exec.Executor
	diags    *diag.Aggregator
	logger   *logging.Logger

	timeout   time.Duration
	diagLimit int
}

// NewRouter wires a Router over a host and a populated registry.
func NewRouter(host engine.Host, registry *capability.Registry, logger *logging.Logger, opts Options) *Router {
	arena := host.Arena()
	limit := opts.DiagnosticsLimit
	if limit < 1 {
		limit = DefaultDiagnosticsLimit
	}
	return &Router{
		host:      host,
		projects:  workspace.NewDisambiguator(host, logger),
		resolver:  resolve.NewResolver(arena, logger),
		registry:  registry,
		executor:  exec.NewExecutor(arena, logger),
		diags:     diag.NewAggregator(arena, logger),
		logger:    logger,
		timeout:   opts.Timeout,
		diagLimit: limit,
	}
}

// RegisterTools adds every bridge tool to the MCP server.
func (r *Router) RegisterTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("rename_symbol",
		mcp.WithDescription("Rename the symbol at a source location across the whole codebase."),
		mcp.WithString("file", mcp.Required(), mcp.Description("File path containing the symbol")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line of the symbol")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column of the symbol")),
		mcp.WithString("newName", mcp.Required(), mcp.Description("New name for the symbol")),
		mcp.WithString("project", mcp.Description("Project name hint when several are open")),
	), r.wrap("rename_symbol", r.renameSymbol))

	s.AddTool(mcp.NewTool("move_symbol",
		mcp.WithDescription("Move the declaration at a source location to another file or container."),
		mcp.WithString("file", mcp.Required(), mcp.Description("File path containing the symbol")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line of the symbol")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column of the symbol")),
		mcp.WithString("targetPath", mcp.Required(), mcp.Description("Destination file or container path")),
		mcp.WithString("project", mcp.Description("Project name hint when several are open")),
	), r.wrap("move_symbol", r.moveSymbol))

	s.AddTool(mcp.NewTool("extract_function",
		mcp.WithDescription("Extract a statement range into a new named function."),
		mcp.WithString("file", mcp.Required(), mcp.Description("File path containing the range")),
		mcp.WithNumber("startLine", mcp.Required(), mcp.Description("1-based start line")),
		mcp.WithNumber("startColumn", mcp.Required(), mcp.Description("1-based start column")),
		mcp.WithNumber("endLine", mcp.Required(), mcp.Description("1-based end line, inclusive")),
		mcp.WithNumber("endColumn", mcp.Required(), mcp.Description("1-based end column, inclusive")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name for the extracted function")),
		mcp.WithString("project", mcp.Description("Project name hint when several are open")),
	), r.wrap("extract_function", r.extractFunction))

	s.AddTool(mcp.NewTool("find_usages",
		mcp.WithDescription("Find all usages of the symbol at a source location, with previews."),
		mcp.WithString("file", mcp.Required(), mcp.Description("File path containing the symbol")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line of the symbol")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column of the symbol")),
		mcp.WithString("project", mcp.Description("Project name hint when several are open")),
	), r.wrap("find_usages", r.findUsages))

	s.AddTool(mcp.NewTool("get_diagnostics",
		mcp.WithDescription("Collect diagnostics for a file, a directory, or a whole project."),
		mcp.WithString("file", mcp.Description("File or directory path; omit for the whole project")),
		mcp.WithString("project", mcp.Description("Project name; required when no file narrows the scope")),
		mcp.WithArray("severity", mcp.Description("Severity filter: error, warning, weakWarning, info, hint")),
		mcp.WithNumber("limit", mcp.Description("Maximum diagnostics to return (default 100)")),
		mcp.WithBoolean("runFresh", mcp.Description("Run analyzers on demand instead of reading cached results")),
	), r.wrap("get_diagnostics", r.getDiagnostics))

	s.AddTool(mcp.NewTool("apply_quick_fix",
		mcp.WithDescription("Apply a quick fix offered by a diagnostic at a source location."),
		mcp.WithString("file", mcp.Required(), mcp.Description("File path containing the diagnostic")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line inside the diagnostic's range")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column inside the diagnostic's range")),
		mcp.WithNumber("fixId", mcp.Required(), mcp.Description("Positional fix id from a get_diagnostics reply")),
		mcp.WithString("diagnosticMessage", mcp.Description("Exact diagnostic message, to disambiguate overlapping findings")),
		mcp.WithString("project", mcp.Description("Project name hint when several are open")),
		mcp.WithBoolean("runFresh", mcp.Description("Re-collect with analyzers before applying (default true)")),
	), r.wrap("apply_quick_fix", r.applyQuickFix))

	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List the open projects and their indexing state."),
	), r.wrap("list_projects", r.listProjects))

	s.AddTool(mcp.NewTool("get_capabilities",
		mcp.WithDescription("List the (language, operation) pairs the bridge currently supports."),
	), r.wrap("get_capabilities", r.getCapabilities))
}

// handler produces an envelope payload or a taxonomy error.
type handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// wrap adapts a handler to the MCP contract: request id, outermost panic
// recovery, and envelope rendering. Taxonomy errors become error envelopes
// on a successful transport reply; only encoding disasters surface as
// protocol errors.
func (r *Router) wrap(tool string, h handler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
		rid := uuid.NewString()
		started := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("Tool handler panicked", map[string]interface{}{
					"tool":      tool,
					"requestId": rid,
					"panic":     fmt.Sprintf("%v", rec),
				})
				res = r.errorResult(errors.Internal(fmt.Errorf("panic in %s: %v", tool, rec)))
				err = nil
			}
		}()

		payload, herr := h(ctx, req.GetArguments())
		if herr != nil {
			r.logger.Warn("Tool request failed", map[string]interface{}{
				"tool":      tool,
				"requestId": rid,
				"code":      string(errors.CodeOf(herr)),
				"error":     herr.Error(),
			})
			return r.errorResult(herr), nil
		}

		rendered, rerr := envelope.Render(payload)
		if rerr != nil {
			return r.errorResult(rerr), nil
		}

		r.logger.Debug("Tool request served", map[string]interface{}{
			"tool":      tool,
			"requestId": rid,
			"elapsed":   time.Since(started).String(),
		})
		return mcp.NewToolResultText(rendered), nil
	}
}

func (r *Router) errorResult(err error) *mcp.CallToolResult {
	rendered, rerr := envelope.Render(envelope.FromError(err))
	if rerr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(rendered)
}

// locate parses the common (file, line, column, project) quartet and
// resolves it to a codebase and element.
func (r *Router) locate(args map[string]interface{}) (engine.Codebase, engine.Element, string, error) {
	file, err := stringArg(args, "file", true)
	if err != nil {
		return nil, nil, "", err
	}
	line, err := intArg(args, "line", true)
	if err != nil {
		return nil, nil, "", err
	}
	column, err := intArg(args, "column", true)
	if err != nil {
		return nil, nil, "", err
	}
	project, err := stringArg(args, "project", false)
	if err != nil {
		return nil, nil, "", err
	}

	cb, err := r.projects.Resolve(file, project)
	if err != nil {
		return nil, nil, "", err
	}
	el, err := r.resolver.ResolveElement(cb, file, line, column)
	if err != nil {
		return nil, nil, "", err
	}
	return cb, el, engine.NormalizePath(file), nil
}

func (r *Router) renameSymbol(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	newName, err := stringArg(args, "newName", true)
	if err != nil {
		return nil, err
	}
	cb, el, _, err := r.locate(args)
	if err != nil {
		return nil, err
	}
	if !el.IsNamed() {
		return nil, errors.Newf(errors.ElementNotRefactorable,
			"element at the requested location has no name to rename")
	}

	oldName := el.Name()
	result, err := r.executor.Execute(cb, "Rename "+oldName, r.timeout, func() (engine.OperationResult, error) {
		ref, ok := cb.Refactorer()
		if !ok {
			return engine.OperationResult{}, errors.Newf(errors.PluginNotAvailable,
				"codebase %q exposes no refactoring support", cb.Name())
		}
		files, err := ref.Rename(el, newName)
		if err != nil {
			return engine.OperationResult{}, err
		}
		return engine.Succeeded(fmt.Sprintf("Renamed %s to %s", oldName, newName), files...), nil
	})
	if err != nil {
		return nil, err
	}
	return envelope.FromResult(result), nil
}

func (r *Router) moveSymbol(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	targetPath, err := stringArg(args, "targetPath", true)
	if err != nil {
		return nil, err
	}
	cb, el, file, err := r.locate(args)
	if err != nil {
		return nil, err
	}

	target := capability.SymbolTarget(cb, el, file)
	impl, ok := r.registry.FindForTarget(target, capability.KindMove)
	if !ok {
		return nil, r.registry.MissingError(target.Language, capability.KindMove)
	}

	result, err := r.executor.Execute(cb, "Move "+el.Name(), r.timeout, func() (engine.OperationResult, error) {
		files, err := impl.Apply(target, capability.Args{TargetPath: engine.NormalizePath(targetPath)})
		if err != nil {
			return engine.OperationResult{}, err
		}
		return engine.Succeeded(fmt.Sprintf("Moved %s to %s", el.Name(), targetPath), files...), nil
	})
	if err != nil {
		return nil, err
	}
	return envelope.FromResult(result), nil
}

func (r *Router) extractFunction(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	file, err := stringArg(args, "file", true)
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args, "name", true)
	if err != nil {
		return nil, err
	}
	var coords [4]int
	for i, key := range []string{"startLine", "startColumn", "endLine", "endColumn"} {
		coords[i], err = intArg(args, key, true)
		if err != nil {
			return nil, err
		}
	}
	project, err := stringArg(args, "project", false)
	if err != nil {
		return nil, err
	}

	cb, err := r.projects.Resolve(file, project)
	if err != nil {
		return nil, err
	}
	rng, err := r.resolver.ResolveRange(cb, file, coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		return nil, err
	}

	target := capability.FileTarget(cb, file)
	impl, ok := r.registry.FindForTarget(target, capability.KindExtractRange)
	if !ok {
		return nil, r.registry.MissingError(target.Language, capability.KindExtractRange)
	}

	result, err := r.executor.Execute(cb, "Extract "+name, r.timeout, func() (engine.OperationResult, error) {
		files, err := impl.Apply(target, capability.Args{Name: name, Range: rng})
		if err != nil {
			return engine.OperationResult{}, err
		}
		return engine.Succeeded(fmt.Sprintf("Extracted function %s", name), files...), nil
	})
	if err != nil {
		return nil, err
	}
	return envelope.FromResult(result), nil
}

func (r *Router) findUsages(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	cb, el, _, err := r.locate(args)
	if err != nil {
		return nil, err
	}

	var usages []engine.Usage
	err = r.host.Arena().Read(func() error {
		var err error
		usages, err = cb.UsagesOf(el)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.InternalError, "usage search failed", err)
	}
	return envelope.NewUsages(el.Name(), usages), nil
}

func (r *Router) getDiagnostics(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	file, err := stringArg(args, "file", false)
	if err != nil {
		return nil, err
	}
	project, err := stringArg(args, "project", false)
	if err != nil {
		return nil, err
	}
	severities, err := severitiesArg(args, "severity")
	if err != nil {
		return nil, err
	}
	limit := intArgDefault(args, "limit", r.diagLimit)
	collector := diag.ForStrategy(boolArg(args, "runFresh", false))

	cb, err := r.scope(file, project)
	if err != nil {
		return nil, err
	}
	files, err := fileSet(cb, file)
	if err != nil {
		return nil, err
	}

	// Bulk scans run off the request goroutine so a canceled request does
	// not leave the reply path blocked mid-scan.
	type outcome struct {
		res diag.Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := r.diags.Collect(ctx, cb, files, severities, limit, collector)
		ch <- outcome{res, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		return envelope.FromDiagResult(out.res), nil
	case <-ctx.Done():
		return nil, errors.Wrap(errors.InternalError, "diagnostics request canceled", ctx.Err())
	}
}

func (r *Router) applyQuickFix(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	file, err := stringArg(args, "file", true)
	if err != nil {
		return nil, err
	}
	line, err := intArg(args, "line", true)
	if err != nil {
		return nil, err
	}
	column, err := intArg(args, "column", true)
	if err != nil {
		return nil, err
	}
	fixID, err := intArg(args, "fixId", true)
	if err != nil {
		return nil, err
	}
	message, err := stringArg(args, "diagnosticMessage", false)
	if err != nil {
		return nil, err
	}
	project, err := stringArg(args, "project", false)
	if err != nil {
		return nil, err
	}
	collector := diag.ForStrategy(boolArg(args, "runFresh", true))

	cb, err := r.projects.Resolve(file, project)
	if err != nil {
		return nil, err
	}

	// Fix ids are positional; re-resolve against a fresh collection so the
	// id cannot drift onto a different fix.
	diagnostic, fix, err := r.diags.ResolveFix(ctx, cb, file, line, column, fixID, message, collector)
	if err != nil {
		return nil, err
	}

	result, err := r.executor.Execute(cb, "Apply Quick Fix: "+fix.Name, r.timeout, func() (engine.OperationResult, error) {
		ref, ok := cb.Refactorer()
		if !ok {
			return engine.OperationResult{}, errors.Newf(errors.PluginNotAvailable,
				"codebase %q exposes no refactoring support", cb.Name())
		}
		files, err := ref.ApplyFix(diagnostic, fix.ID)
		if err != nil {
			return engine.OperationResult{}, err
		}
		return engine.Succeeded(fmt.Sprintf("Applied quick fix %q", fix.Name), files...), nil
	})
	if err != nil {
		return nil, err
	}
	return envelope.FromResult(result), nil
}

func (r *Router) listProjects(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return envelope.NewProjects(r.host.Codebases()), nil
}

func (r *Router) getCapabilities(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return envelope.Capabilities{Capabilities: r.registry.Pairs()}, nil
}

// scope selects the codebase for a diagnostics request. An explicit project
// name wins; otherwise the file locates it; with neither, a single open
// codebase is unambiguous and anything else needs the caller to choose.
func (r *Router) scope(file, project string) (engine.Codebase, error) {
	if project != "" {
		return r.projects.ByName(project)
	}
	if file != "" {
		return r.projects.Resolve(file, "")
	}
	open := engine.OpenCodebases(r.host)
	switch len(open) {
	case 0:
		return nil, errors.New(errors.ProjectNotFound, "no codebases are currently open")
	case 1:
		return open[0], nil
	}
	return nil, errors.Newf(errors.InvalidInput,
		"%d codebases are open; specify project or file to scope the scan", len(open))
}
