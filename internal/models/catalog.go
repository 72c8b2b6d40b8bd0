package models

// ClassRecord is one documented class as exported by the documentation
// generator. Path is slash-delimited, e.g. "Category/Subcategory/MyClass".
type ClassRecord struct {
	ClassName  string           `json:"className"`
	Path       string           `json:"path"`
	Properties []PropertyRecord `json:"properties"`
	Functions  []FunctionRecord `json:"functions"`
	Nodes      []NodeRecord     `json:"nodes,omitempty"`
}

// CatalogDocument is the wrapped form of the documentation snapshot.
type CatalogDocument struct {
	Nodes []ClassRecord `json:"nodes"`
}

// PropertyRecord describes a class property.
type PropertyRecord struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Flags       []string `json:"flags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// FunctionRecord describes a callable member.
type FunctionRecord struct {
	Name        string            `json:"name"`
	ReturnType  string            `json:"returnType"`
	Parameters  []ParameterRecord `json:"parameters"`
	Flags       []string          `json:"flags,omitempty"`
	Description string            `json:"description,omitempty"`
}

// ParameterRecord describes one function parameter.
type ParameterRecord struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Flags       []string `json:"flags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// NodeRecord describes a visual graph node exposed by a class.
type NodeRecord struct {
	DocsName    string      `json:"docsName"`
	ClassID     string      `json:"classId"`
	ClassName   string      `json:"className"`
	ShortTitle  string      `json:"shortTitle"`
	FullTitle   string      `json:"fullTitle"`
	ImgPath     string      `json:"imgPath"`
	Inputs      []PinRecord `json:"inputs"`
	Outputs     []PinRecord `json:"outputs"`
	Description string      `json:"description,omitempty"`
}

// PinRecord is an input or output pin of a node.
type PinRecord struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// TreeItem is a node of the navigation tree. Category items group children and
// carry empty content; leaf items represent a class.
type TreeItem struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Path       string           `json:"path"`
	Children   []*TreeItem      `json:"children"`
	Properties []PropertyRecord `json:"properties"`
	Functions  []FunctionRecord `json:"functions"`
	Nodes      []NodeRecord     `json:"nodes"`
}
