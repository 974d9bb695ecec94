package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nathoo/questroux/engine/state"
	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds how long catalog scripts may run in total.
const DefaultTimeout = 5 * time.Second

// collector accumulates Lua definitions during file execution.
type collector struct {
	campus *lua.LTable
	quests []rawQuest
	order  int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// FileError reports a catalog script that failed to run.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("executing %s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Load is LoadContext with DefaultTimeout.
func Load(dir string) (*state.Catalog, []string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	return LoadContext(ctx, dir)
}

// LoadContext runs every .lua file in dir in one sandboxed VM, compiles the
// collected definitions, and validates them. Warnings are returned even
// when validation fails. Scripts are interrupted when ctx is done.
func LoadContext(ctx context.Context, dir string) (*state.Catalog, []string, error) {
	files, err := catalogFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	L, coll := newVM()
	defer L.Close()
	L.SetContext(ctx)

	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = errors.Join(ctxErr, err)
			}
			return nil, nil, &FileError{File: f, Err: err}
		}
	}

	campus, quests, err := compile(coll)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling catalog: %w", err)
	}
	warnings, err := validate(campus, quests)
	if err != nil {
		return nil, warnings, err
	}
	return state.NewCatalog(campus, quests), warnings, nil
}

// catalogFiles lists the .lua files in dir in execution order.
func catalogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".lua") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	return sortedLuaFiles(names), nil
}

// newVM returns a sandboxed VM with the catalog API registered.
func newVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

// openSafeLibs opens base, table, string, and math. No io, os, or package.
func openSafeLibs(L *lua.LState) {
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			panic(err)
		}
	}
}

// blocked lists globals and library fields that escape the sandbox or make
// loading nondeterministic.
var blocked = map[string][]string{
	"": {
		"dofile", "loadfile", "load", "loadstring", "require", "module",
		"rawset", "rawget", "rawequal", "collectgarbage",
		"getfenv", "setfenv", "newproxy",
	},
	"math": {"random", "randomseed"},
}

func sandbox(L *lua.LState) {
	for lib, names := range blocked {
		if lib == "" {
			for _, name := range names {
				L.SetGlobal(name, lua.LNil)
			}
			continue
		}
		tbl, ok := L.GetGlobal(lib).(*lua.LTable)
		if !ok {
			continue
		}
		for _, name := range names {
			tbl.RawSetString(name, lua.LNil)
		}
	}
}
