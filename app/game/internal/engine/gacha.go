package engine

import (
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/rng"
)

// DrawResult 单抽结果
type DrawResult struct {
	InstanceID   string       `json:"instanceId"`
	DefinitionID string       `json:"characterId"`
	Name         string       `json:"characterName"`
	Rarity       model.Rarity `json:"rarity"`
	IsNew        bool         `json:"isNew"`
}

// DrawOutcome 一次抽卡的全部产出
type DrawOutcome struct {
	Results          []DrawResult
	Instances        []*model.CharacterInstance
	Records          []*model.GachaRecord
	RemainingTickets int64
	RemainingGems    int64
}

// Draw 先扣费再铸造实例；扣费失败时玩家与产出均不变
// ownedDefs 为本次抽卡前已持有的定义 id
func Draw(env *Env, p *model.Player, ownedDefs map[string]struct{}, count int, useTicket bool) (*DrawOutcome, error) {
	t := env.Table

	// 1. 参数校验
	if count < 1 || count > t.Gacha.MaxDrawCount {
		return nil, gameerr.Validation("draw count must be between 1 and %d, got %d", t.Gacha.MaxDrawCount, count)
	}

	// 2. 扣费
	paidWith := model.PaidWithGem
	resource, cost := model.ResourceGems, int64(count)*t.Gacha.GemCostPerDraw
	if useTicket {
		paidWith = model.PaidWithTicket
		resource, cost = model.ResourceTickets, int64(count)
	}
	if err := Debit(p, resource, cost); err != nil {
		return nil, err
	}

	// 3. 逐抽铸造
	seen := make(map[string]struct{}, len(ownedDefs)+count)
	for id := range ownedDefs {
		seen[id] = struct{}{}
	}
	out := &DrawOutcome{
		Results:   make([]DrawResult, 0, count),
		Instances: make([]*model.CharacterInstance, 0, count),
		Records:   make([]*model.GachaRecord, 0, count),
	}
	thresholds := t.RarityThresholds()
	for i := 0; i < count; i++ {
		rarity := RollRarity(thresholds, env.Rand)
		def := PickDefinition(t, rarity, env.Rand)

		_, owned := seen[def.ID]
		seen[def.ID] = struct{}{}

		inst := &model.CharacterInstance{
			InstanceID:   env.NewID(),
			PlayerID:     p.ID,
			DefinitionID: def.ID,
			Level:        1,
			AcquiredAt:   env.Now,
		}
		out.Instances = append(out.Instances, inst)
		out.Results = append(out.Results, DrawResult{
			InstanceID:   inst.InstanceID,
			DefinitionID: def.ID,
			Name:         def.Name,
			Rarity:       def.Rarity,
			IsNew:        !owned,
		})
		out.Records = append(out.Records, &model.GachaRecord{
			PlayerID:     p.ID,
			InstanceID:   inst.InstanceID,
			DefinitionID: def.ID,
			Rarity:       def.Rarity,
			IsNew:        !owned,
			PaidWith:     paidWith,
			CreatedAt:    env.Now,
		})
	}

	out.RemainingTickets = p.Tickets
	out.RemainingGems = p.Gems
	return out, nil
}

// RollRarity u∈[0,100) 落入的第一个累计区间
func RollRarity(thresholds []masterdata.Threshold, src rng.Source) model.Rarity {
	u := src.Float64() * 100
	for _, th := range thresholds {
		if u < th.Upper {
			return th.Rarity
		}
	}
	return thresholds[len(thresholds)-1].Rarity
}

// PickDefinition 在稀有度内均匀选取定义
func PickDefinition(t *masterdata.Table, r model.Rarity, src rng.Source) *model.CharacterDefinition {
	defs := t.DefinitionsByRarity(r)
	return defs[src.IntN(len(defs))]
}
