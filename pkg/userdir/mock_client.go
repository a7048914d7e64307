// pkg/userdir/mock_client.go

package userdir

import "context"

type mockClient struct{ emails map[string]string }

func NewMock(emails map[string]string) Client {
	if emails == nil {
		emails = map[string]string{}
	}
	return &mockClient{emails: emails}
}

func (m *mockClient) EmailFor(_ context.Context, uid string) (string, error) {
	return m.emails[uid], nil
}
