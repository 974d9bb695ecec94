package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Campus { title = "...", ... }
	L.SetGlobal("Campus", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.campus = tbl
		return 0
	}))

	// Quest "id" { ... } is curried: Quest("id") returns a function that takes a table.
	L.SetGlobal("Quest", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.quests = append(coll.quests, rawQuest{id: id, table: tbl, order: coll.nextSourceOrder()})
			return 0
		}))
		return 1
	}))

	// Typed shorthands: LocationQuest "id" { ... } sets type = "location", etc.
	for name, typ := range map[string]string{
		"LocationQuest": "location",
		"JournalQuest":  "journal",
		"PhotoQuest":    "photo",
		"FinalQuest":    "final",
	} {
		typ := typ // per-iteration copy; go.mod targets go1.21 loop semantics
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				tbl.RawSetString("type", lua.LString(typ))
				coll.quests = append(coll.quests, rawQuest{id: id, table: tbl, order: coll.nextSourceOrder()})
				return 0
			}))
			return 1
		}))
	}
}

func registerConditionHelpers(L *lua.LState) {
	// MinXP(40)
	L.SetGlobal("MinXP", L.NewFunction(func(L *lua.LState) int {
		xp := L.CheckInt(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("min_xp"))
		tbl.RawSetString("xp", lua.LNumber(xp))
		L.Push(tbl)
		return 1
	}))

	// Completed("q1")
	L.SetGlobal("Completed", L.NewFunction(func(L *lua.LState) int {
		quest := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("quest_completed"))
		tbl.RawSetString("quest", lua.LString(quest))
		L.Push(tbl)
		return 1
	}))
}
