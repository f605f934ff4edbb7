package event

// Wire tags of every event variant.
const (
	KindInit               Kind = "init"
	KindTurn               Kind = "turn"
	KindUpkeep             Kind = "upkeep"
	KindWin                Kind = "win"
	KindTie                Kind = "tie"
	KindSwitch             Kind = "switch"
	KindDetailsChange      Kind = "detailschange"
	KindFormeChange        Kind = "formechange"
	KindTransform          Kind = "transform"
	KindFaint              Kind = "faint"
	KindMove               Kind = "move"
	KindCant               Kind = "cant"
	KindPrepare            Kind = "prepare"
	KindMustRecharge       Kind = "mustrecharge"
	KindFail               Kind = "fail"
	KindNoTarget           Kind = "notarget"
	KindMiss               Kind = "miss"
	KindImmune             Kind = "immune"
	KindCrit               Kind = "crit"
	KindSuperEffective     Kind = "supereffective"
	KindResisted           Kind = "resisted"
	KindHitCount           Kind = "hitcount"
	KindActivate           Kind = "activate"
	KindSingleTurn         Kind = "singleturn"
	KindDamage             Kind = "damage"
	KindHeal               Kind = "heal"
	KindStatus             Kind = "status"
	KindCureStatus         Kind = "curestatus"
	KindCureTeam           Kind = "cureteam"
	KindBoost              Kind = "boost"
	KindSetBoost           Kind = "setboost"
	KindClearAllBoost      Kind = "clearallboost"
	KindClearNegativeBoost Kind = "clearnegativeboost"
	KindStart              Kind = "start"
	KindEnd                Kind = "end"
	KindAbility            Kind = "ability"
	KindItem               Kind = "item"
	KindEndItem            Kind = "enditem"
	KindWeather            Kind = "weather"
	KindFieldStart         Kind = "fieldstart"
	KindFieldEnd           Kind = "fieldend"
	KindSideStart          Kind = "sidestart"
	KindSideEnd            Kind = "sideend"
)

// Kinds lists every variant tag.
var Kinds = []Kind{
	KindInit, KindTurn, KindUpkeep, KindWin, KindTie, KindSwitch,
	KindDetailsChange, KindFormeChange, KindTransform, KindFaint, KindMove,
	KindCant, KindPrepare, KindMustRecharge, KindFail, KindNoTarget, KindMiss,
	KindImmune, KindCrit, KindSuperEffective, KindResisted, KindHitCount,
	KindActivate, KindSingleTurn, KindDamage, KindHeal, KindStatus,
	KindCureStatus, KindCureTeam, KindBoost, KindSetBoost, KindClearAllBoost,
	KindClearNegativeBoost, KindStart, KindEnd, KindAbility, KindItem,
	KindEndItem, KindWeather, KindFieldStart, KindFieldEnd, KindSideStart,
	KindSideEnd,
}

var factories = map[Kind]func() Event{
	KindInit:               func() Event { return &Init{} },
	KindTurn:               func() Event { return &Turn{} },
	KindUpkeep:             func() Event { return &Upkeep{} },
	KindWin:                func() Event { return &Win{} },
	KindTie:                func() Event { return &Tie{} },
	KindSwitch:             func() Event { return &Switch{} },
	KindDetailsChange:      func() Event { return &DetailsChange{} },
	KindFormeChange:        func() Event { return &FormeChange{} },
	KindTransform:          func() Event { return &Transform{} },
	KindFaint:              func() Event { return &Faint{} },
	KindMove:               func() Event { return &Move{} },
	KindCant:               func() Event { return &Cant{} },
	KindPrepare:            func() Event { return &Prepare{} },
	KindMustRecharge:       func() Event { return &MustRecharge{} },
	KindFail:               func() Event { return &Fail{} },
	KindNoTarget:           func() Event { return &NoTarget{} },
	KindMiss:               func() Event { return &Miss{} },
	KindImmune:             func() Event { return &Immune{} },
	KindCrit:               func() Event { return &Crit{} },
	KindSuperEffective:     func() Event { return &SuperEffective{} },
	KindResisted:           func() Event { return &Resisted{} },
	KindHitCount:           func() Event { return &HitCount{} },
	KindActivate:           func() Event { return &Activate{} },
	KindSingleTurn:         func() Event { return &SingleTurn{} },
	KindDamage:             func() Event { return &Damage{} },
	KindHeal:               func() Event { return &Heal{} },
	KindStatus:             func() Event { return &Status{} },
	KindCureStatus:         func() Event { return &CureStatus{} },
	KindCureTeam:           func() Event { return &CureTeam{} },
	KindBoost:              func() Event { return &Boost{} },
	KindSetBoost:           func() Event { return &SetBoost{} },
	KindClearAllBoost:      func() Event { return &ClearAllBoost{} },
	KindClearNegativeBoost: func() Event { return &ClearNegativeBoost{} },
	KindStart:              func() Event { return &Start{} },
	KindEnd:                func() Event { return &End{} },
	KindAbility:            func() Event { return &Ability{} },
	KindItem:               func() Event { return &Item{} },
	KindEndItem:            func() Event { return &EndItem{} },
	KindWeather:            func() Event { return &Weather{} },
	KindFieldStart:         func() Event { return &FieldStart{} },
	KindFieldEnd:           func() Event { return &FieldEnd{} },
	KindSideStart:          func() Event { return &SideStart{} },
	KindSideEnd:            func() Event { return &SideEnd{} },
}

func (*Init) Kind() Kind               { return KindInit }
func (*Turn) Kind() Kind               { return KindTurn }
func (*Upkeep) Kind() Kind             { return KindUpkeep }
func (*Win) Kind() Kind                { return KindWin }
func (*Tie) Kind() Kind                { return KindTie }
func (*Switch) Kind() Kind             { return KindSwitch }
func (*DetailsChange) Kind() Kind      { return KindDetailsChange }
func (*FormeChange) Kind() Kind        { return KindFormeChange }
func (*Transform) Kind() Kind          { return KindTransform }
func (*Faint) Kind() Kind              { return KindFaint }
func (*Move) Kind() Kind               { return KindMove }
func (*Cant) Kind() Kind               { return KindCant }
func (*Prepare) Kind() Kind            { return KindPrepare }
func (*MustRecharge) Kind() Kind       { return KindMustRecharge }
func (*Fail) Kind() Kind               { return KindFail }
func (*NoTarget) Kind() Kind           { return KindNoTarget }
func (*Miss) Kind() Kind               { return KindMiss }
func (*Immune) Kind() Kind             { return KindImmune }
func (*Crit) Kind() Kind               { return KindCrit }
func (*SuperEffective) Kind() Kind     { return KindSuperEffective }
func (*Resisted) Kind() Kind           { return KindResisted }
func (*HitCount) Kind() Kind           { return KindHitCount }
func (*Activate) Kind() Kind           { return KindActivate }
func (*SingleTurn) Kind() Kind         { return KindSingleTurn }
func (*Damage) Kind() Kind             { return KindDamage }
func (*Heal) Kind() Kind               { return KindHeal }
func (*Status) Kind() Kind             { return KindStatus }
func (*CureStatus) Kind() Kind         { return KindCureStatus }
func (*CureTeam) Kind() Kind           { return KindCureTeam }
func (*Boost) Kind() Kind              { return KindBoost }
func (*SetBoost) Kind() Kind           { return KindSetBoost }
func (*ClearAllBoost) Kind() Kind      { return KindClearAllBoost }
func (*ClearNegativeBoost) Kind() Kind { return KindClearNegativeBoost }
func (*Start) Kind() Kind              { return KindStart }
func (*End) Kind() Kind                { return KindEnd }
func (*Ability) Kind() Kind            { return KindAbility }
func (*Item) Kind() Kind               { return KindItem }
func (*EndItem) Kind() Kind            { return KindEndItem }
func (*Weather) Kind() Kind            { return KindWeather }
func (*FieldStart) Kind() Kind         { return KindFieldStart }
func (*FieldEnd) Kind() Kind           { return KindFieldEnd }
func (*SideStart) Kind() Kind          { return KindSideStart }
func (*SideEnd) Kind() Kind            { return KindSideEnd }

func (*Init) event()               {}
func (*Turn) event()               {}
func (*Upkeep) event()             {}
func (*Win) event()                {}
func (*Tie) event()                {}
func (*Switch) event()             {}
func (*DetailsChange) event()      {}
func (*FormeChange) event()        {}
func (*Transform) event()          {}
func (*Faint) event()              {}
func (*Move) event()               {}
func (*Cant) event()               {}
func (*Prepare) event()            {}
func (*MustRecharge) event()       {}
func (*Fail) event()               {}
func (*NoTarget) event()           {}
func (*Miss) event()               {}
func (*Immune) event()             {}
func (*Crit) event()               {}
func (*SuperEffective) event()     {}
func (*Resisted) event()           {}
func (*HitCount) event()           {}
func (*Activate) event()           {}
func (*SingleTurn) event()         {}
func (*Damage) event()             {}
func (*Heal) event()               {}
func (*Status) event()             {}
func (*CureStatus) event()         {}
func (*CureTeam) event()           {}
func (*Boost) event()              {}
func (*SetBoost) event()           {}
func (*ClearAllBoost) event()      {}
func (*ClearNegativeBoost) event() {}
func (*Start) event()              {}
func (*End) event()                {}
func (*Ability) event()            {}
func (*Item) event()               {}
func (*EndItem) event()            {}
func (*Weather) event()            {}
func (*FieldStart) event()         {}
func (*FieldEnd) event()           {}
func (*SideStart) event()          {}
func (*SideEnd) event()            {}
