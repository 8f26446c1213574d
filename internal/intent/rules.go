package intent

const (
	GravityStateID = "gravity_off"
	SwordStateID   = "sword_slash"
)

var defaultCompiler = NewCompiler(DefaultRules(), Result{
	TargetStateID: BaselineStateID,
	Label:         BaselineLabel,
})

// DefaultRules returns the built-in bilingual rule table. Gravity is checked
// before combat, so text mentioning both resolves to gravity.
func DefaultRules() []Rule {
	return []Rule{
		{
			TargetStateID: GravityStateID,
			Keywords: []string{
				"gravity", "gravit", "引力", "失重", "重力", "漂浮", "float", "floating",
				"levitate", "levitation", "悬浮", "weightless", "无重力", "zero-g",
			},
			AffectedAnchors: []string{"GravityField", "PhysicsEngine"},
			Label:           "Gravity Disabled",
		},
		{
			TargetStateID: SwordStateID,
			Keywords: []string{
				"sword", "长剑", "剑气", "斩击", "slash", "blade", "刀", "剑",
				"strike", "attack", "攻击", "砍", "cut", "slice", "武器", "weapon",
			},
			AffectedAnchors: []string{"WeaponImpulse", "CombatSystem"},
			Label:           "Sword Activated",
		},
	}
}

func Default() *Compiler {
	return defaultCompiler
}

// Compile classifies text with the built-in rule table.
func Compile(text string) Result {
	return defaultCompiler.Compile(text)
}
