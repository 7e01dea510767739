package main

// AttackEffect is a short-lived record of one strike, kept only so
// clients can animate it. Effects carry no game logic; damage is
// already applied when the effect is created.
type AttackEffect struct {
	ID         string
	AttackerID string
	TargetID   string
	Type       string // MELEE, RANGED or MAGIC
	From       Position
	To         Position
	Damage     int
	CreatedAt  float64
	Duration   float64
}

// NewAttackEffect records a strike at the given game time. The render
// duration depends on the effect type.
func NewAttackEffect(attackerID, targetID, effectType string, from, to Position, damage int, now float64) *AttackEffect {
	return &AttackEffect{
		ID:         GenerateID(4),
		AttackerID: attackerID,
		TargetID:   targetID,
		Type:       effectType,
		From:       from,
		To:         to,
		Damage:     damage,
		CreatedAt:  now,
		Duration:   effectDuration(effectType),
	}
}

func effectDuration(effectType string) float64 {
	switch effectType {
	case EffectRanged:
		return EffectRangedDuration
	case EffectMagic:
		return EffectMagicDuration
	default:
		return EffectMeleeDuration
	}
}

// Expired reports whether the animation window has passed.
func (e *AttackEffect) Expired(now float64) bool {
	return now-e.CreatedAt >= e.Duration
}

// heroEffectType maps a hero class to the strike animation it plays.
func heroEffectType(t HeroType) string {
	switch t {
	case HeroArcher:
		return EffectRanged
	case HeroMage:
		return EffectMagic
	default:
		return EffectMelee
	}
}

// enemyEffectType maps an enemy variant to its strike animation.
func enemyEffectType(t EnemyType) string {
	if t == EnemyRanged {
		return EffectRanged
	}
	return EffectMelee
}
