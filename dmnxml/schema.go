package dmnxml

import "encoding/xml"

// The structs below mirror the subset of the DMN 1.5 XML schema this
// reader recognizes. Namespace prefixes are ignored; xml.Name.Local
// matching means a document using the standard `dmn:` prefix or none at
// all parses identically.

type definitions struct {
	XMLName   xml.Name      `xml:"definitions"`
	Decisions []decisionXML `xml:"decision"`
	BKMs      []bkmXML      `xml:"businessKnowledgeModel"`
}

type decisionXML struct {
	Name               string              `xml:"name,attr"`
	DecisionTable      *decisionTableXML   `xml:"decisionTable"`
	LiteralExpression  *literalExpression  `xml:"literalExpression"`
}

type decisionTableXML struct {
	HitPolicy   string       `xml:"hitPolicy,attr"`
	Aggregation string       `xml:"aggregation,attr"`
	Inputs      []inputXML   `xml:"input"`
	Outputs     []outputXML  `xml:"output"`
	Rules       []ruleXML    `xml:"rule"`
}

type inputXML struct {
	Label           string             `xml:"label,attr"`
	InputExpression *literalExpression `xml:"inputExpression"`
}

type outputXML struct {
	Name         string `xml:"name,attr"`
	OutputValues string `xml:"outputValues>text"`
}

type ruleXML struct {
	InputEntries  []literalExpression `xml:"inputEntry"`
	OutputEntries []literalExpression `xml:"outputEntry"`
}

type literalExpression struct {
	Text string `xml:"text"`
}

type bkmXML struct {
	Name              string             `xml:"name,attr"`
	EncapsulatedLogic *encapsulatedLogic `xml:"encapsulatedLogic"`
}

type encapsulatedLogic struct {
	FormalParameters  []formalParameter  `xml:"formalParameter"`
	LiteralExpression *literalExpression `xml:"literalExpression"`
}

type formalParameter struct {
	Name string `xml:"name,attr"`
}
