package handler

import "github.com/fotf/subscription-system/internal/core/domain"

func toAccountSummary(a *domain.Account) accountSummary {
	return accountSummary{
		ID:        a.ID,
		Username:  a.Username,
		IsAdmin:   a.IsAdmin,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toProductResponse(p *domain.Product) productResponse {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Features:    features,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toSubscriptionResponse(s *domain.Subscription) subscriptionResponse {
	resp := subscriptionResponse{
		ID:                 s.ID,
		UserID:             s.UserID,
		ProductID:          s.ProductID,
		DiscordUsername:    s.DiscordUsername,
		Status:             string(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CreatedAt:          s.CreatedAt,
	}
	if s.Product != nil {
		p := toProductResponse(s.Product)
		resp.Product = &p
	}
	if s.User != nil {
		u := toAccountSummary(s.User)
		resp.User = &u
	}
	return resp
}
