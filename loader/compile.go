// Package loader loads Lua quest catalogs into Go structs at startup.
// The Lua VM is discarded after loading; no Lua runs at runtime.
package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/questroux/types"
	lua "github.com/yuin/gopher-lua"
)

// rawQuest holds a quest table before compilation.
type rawQuest struct {
	id    string
	table *lua.LTable
	order int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// compile converts all collected Lua data into campus metadata and quests
// in declaration order.
func compile(coll *collector) (types.CampusDef, []types.Quest, error) {
	if coll.campus == nil {
		return types.CampusDef{}, nil, fmt.Errorf("no Campus{} definition found")
	}
	campus := compileCampus(coll.campus)

	sort.SliceStable(coll.quests, func(i, j int) bool {
		return coll.quests[i].order < coll.quests[j].order
	})
	quests := make([]types.Quest, 0, len(coll.quests))
	for _, raw := range coll.quests {
		q, err := compileQuest(raw)
		if err != nil {
			return types.CampusDef{}, nil, fmt.Errorf("compiling quest %s: %w", raw.id, err)
		}
		quests = append(quests, q)
	}
	return campus, quests, nil
}

func compileCampus(tbl *lua.LTable) types.CampusDef {
	return types.CampusDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Intro:   getString(tbl, "intro"),
		XPCap:   getInt(tbl, "xp_cap"),
	}
}

// compileQuest compiles a raw quest table into a Quest.
func compileQuest(raw rawQuest) (types.Quest, error) {
	tbl := raw.table
	q := types.Quest{
		ID:          raw.id,
		Title:       getString(tbl, "title"),
		Description: strings.TrimSpace(getString(tbl, "description")),
		Location:    getString(tbl, "location"),
		Type:        types.QuestType(strings.ToLower(getString(tbl, "type"))),
		Reward:      getInt(tbl, "reward"),
		Code:        strings.TrimSpace(getString(tbl, "code")),
	}

	if reqTbl := getTable(tbl, "requires"); reqTbl != nil {
		req, err := compileRequires(reqTbl)
		if err != nil {
			return types.Quest{}, err
		}
		q.Requires = req
	}
	return q, nil
}

// compileRequires folds a list of condition tables into Prerequisites.
// Several MinXP entries keep the highest.
func compileRequires(tbl *lua.LTable) (types.Prerequisites, error) {
	var req types.Prerequisites
	var err error
	tbl.ForEach(func(_, v lua.LValue) {
		if err != nil {
			return
		}
		cond, ok := v.(*lua.LTable)
		if !ok {
			err = fmt.Errorf("requires entries must be MinXP(n) or Completed(id), got %s", v.Type())
			return
		}
		switch typ := getString(cond, "type"); typ {
		case "min_xp":
			req.MinXP = max(req.MinXP, getInt(cond, "xp"))
		case "quest_completed":
			req.RequiredQuests = append(req.RequiredQuests, getString(cond, "quest"))
		default:
			err = fmt.Errorf("unknown condition type %q", typ)
		}
	})
	return req, err
}

// sortedLuaFiles returns .lua files with campus.lua first, rest alphabetical.
func sortedLuaFiles(files []string) []string {
	var campusFile string
	var others []string
	for _, f := range files {
		if f == "campus.lua" {
			campusFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if campusFile != "" {
		return append([]string{campusFile}, others...)
	}
	return others
}
