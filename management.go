package gapy

import (
	"context"
	"fmt"
)

// ManagementClient lists and looks up Analytics management resources. Every
// call fetches a fresh listing; nothing is cached between calls.
type ManagementClient struct {
	service *service
}

// Accounts lists the accounts visible to the authorized credential.
func (m *ManagementClient) Accounts(ctx context.Context) (*ManagementResponse, error) {
	return m.list(ctx, "/management/accounts")
}

// Account looks up a single account by id. Returns ErrNotFound when the
// listing holds no match.
func (m *ManagementClient) Account(ctx context.Context, id string) (Item, error) {
	resp, err := m.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Get(id)
}

// Webproperties lists the web properties of an account.
func (m *ManagementClient) Webproperties(ctx context.Context, account string) (*ManagementResponse, error) {
	return m.list(ctx, fmt.Sprintf("/management/accounts/%s/webproperties", account))
}

// Webproperty looks up a single web property by id.
func (m *ManagementClient) Webproperty(ctx context.Context, account, id string) (Item, error) {
	resp, err := m.Webproperties(ctx, account)
	if err != nil {
		return nil, err
	}
	return resp.Get(id)
}

// Profiles lists the profiles (views) of a web property.
func (m *ManagementClient) Profiles(ctx context.Context, account, webproperty string) (*ManagementResponse, error) {
	return m.list(ctx, fmt.Sprintf("/management/accounts/%s/webproperties/%s/profiles", account, webproperty))
}

// Profile looks up a single profile by id.
func (m *ManagementClient) Profile(ctx context.Context, account, webproperty, id string) (Item, error) {
	resp, err := m.Profiles(ctx, account, webproperty)
	if err != nil {
		return nil, err
	}
	return resp.Get(id)
}

// Segments lists the segments visible to the authorized credential.
func (m *ManagementClient) Segments(ctx context.Context) (*ManagementResponse, error) {
	return m.list(ctx, "/management/segments")
}

// Segment looks up a single segment by id.
func (m *ManagementClient) Segment(ctx context.Context, id string) (Item, error) {
	resp, err := m.Segments(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Get(id)
}

func (m *ManagementClient) list(ctx context.Context, path string) (*ManagementResponse, error) {
	var data managementData
	if err := m.service.execute(ctx, path, nil, &data); err != nil {
		return nil, err
	}
	return &ManagementResponse{items: data.Items}, nil
}
