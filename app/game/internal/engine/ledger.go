package engine

import (
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

// Debit 扣除货币，余额不足时不做任何修改
func Debit(p *model.Player, r model.Resource, amount int64) error {
	if err := checkAmount(r, amount); err != nil {
		return err
	}
	balance := p.Balance(r)
	if balance < amount {
		return gameerr.Insufficient(r, amount, balance)
	}
	p.SetBalance(r, balance-amount)
	return nil
}

// Credit 增加货币
func Credit(p *model.Player, r model.Resource, amount int64) error {
	if err := checkAmount(r, amount); err != nil {
		return err
	}
	p.SetBalance(r, p.Balance(r)+amount)
	return nil
}

// CanAfford 余额是否足够
func CanAfford(p *model.Player, r model.Resource, amount int64) bool {
	return p.Balance(r) >= amount
}

// ApplyUploadReward 结算上传收益并重算频道战力
func ApplyUploadReward(p *model.Player, views, revenue, newSubscribers int64) {
	p.Gold += revenue
	p.TotalViews += views
	p.Subscribers += newSubscribers
	p.ChannelPower = ChannelPower(p)
}

// ChannelPower subscribers + totalViews/100
func ChannelPower(p *model.Player) int64 {
	return p.Subscribers + p.TotalViews/100
}

func checkAmount(r model.Resource, amount int64) error {
	if !r.Valid() {
		return gameerr.Validation("unknown resource %q", r)
	}
	if amount < 0 {
		return gameerr.Validation("amount must be >= 0, got %d", amount)
	}
	return nil
}
