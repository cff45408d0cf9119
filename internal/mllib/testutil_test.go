package mllib

type testModel struct{ repo string }

func (m testModel) Repository() string { return m.repo }

type testInput struct{ label string }
type testOutput struct{ best int }

func newTestLib(repo string) *Lib[*testInput, *testOutput, testModel] {
	return New("test", &testInput{label: "y"}, &testOutput{best: 1}, testModel{repo: repo})
}
