package dmnxml

import (
	"testing"

	"github.com/dmnfeel/engine/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `
<definitions>
  <decision name="Greeting">
    <literalExpression><text>"Hello " + Full Name</text></literalExpression>
  </decision>
  <decision name="AgeCategory">
    <decisionTable hitPolicy="FIRST">
      <input label="age">
        <inputExpression><text>age</text></inputExpression>
      </input>
      <output name="category"></output>
      <rule>
        <inputEntry><text>&lt;18</text></inputEntry>
        <outputEntry><text>"Minor"</text></outputEntry>
      </rule>
      <rule>
        <inputEntry><text>[18..65)</text></inputEntry>
        <outputEntry><text>"Adult"</text></outputEntry>
      </rule>
      <rule>
        <inputEntry><text>&gt;=65</text></inputEntry>
        <outputEntry><text>"Senior"</text></outputEntry>
      </rule>
    </decisionTable>
  </decision>
  <businessKnowledgeModel name="Double">
    <encapsulatedLogic>
      <formalParameter name="x"/>
      <literalExpression><text>x * 2</text></literalExpression>
    </encapsulatedLogic>
  </businessKnowledgeModel>
</definitions>
`

func TestReadSampleModel(t *testing.T) {
	m, err := Read([]byte(sampleXML))
	require.NoError(t, err)

	require.Len(t, m.Literals, 1)
	assert.Equal(t, "Greeting", m.Literals[0].Name)

	require.Len(t, m.Tables, 1)
	table := m.Tables[0]
	assert.Equal(t, "AgeCategory", table.Name)
	assert.Equal(t, model.First, table.HitPolicy)
	require.Len(t, table.Rules, 3)
	require.NoError(t, table.Validate())

	require.Len(t, m.BKMs, 1)
	assert.Equal(t, "Double", m.BKMs[0].Name)
	assert.Equal(t, []string{"x"}, m.BKMs[0].Parameters)
}

func TestReadRejectsMalformedExpression(t *testing.T) {
	bad := `<definitions><decision name="Bad"><literalExpression><text>1 +</text></literalExpression></decision></definitions>`
	_, err := Read([]byte(bad))
	assert.Error(t, err)
}
