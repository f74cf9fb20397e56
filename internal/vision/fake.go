package vision

import (
	"context"

	"designify/internal/projecttree"
)

// FakeClient returns deterministic, minimal output for offline/testing.
type FakeClient struct {
	Description   string
	Payload       projecttree.Payload
	DescribeErr   error
	GenerateErr   error
	DescribeCalls int
	GenerateCalls int
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		Description: "a landing page with a top nav and a hero section",
		Payload: projecttree.Payload{
			Components: map[string]string{"Nav.jsx": "export default function Nav() { return null }"},
			Styles:     map[string]string{"index.css": "body { margin: 0; }"},
			Pages:      map[string]string{"main.jsx": "console.log('app')"},
		},
	}
}

func (f *FakeClient) DescribeImage(_ context.Context, _ []byte, _ string) (string, error) {
	f.DescribeCalls++
	if f.DescribeErr != nil {
		return "", f.DescribeErr
	}
	return f.Description, nil
}

func (f *FakeClient) GenerateProject(_ context.Context, _ string) (projecttree.Payload, error) {
	f.GenerateCalls++
	if f.GenerateErr != nil {
		return projecttree.Payload{}, f.GenerateErr
	}
	return f.Payload, nil
}
