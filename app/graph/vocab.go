package graph

const (
	RDFNamespace    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNamespace    = "http://www.w3.org/2001/XMLSchema#"
	SchemaNamespace = "http://schema.org/"

	// SchemaSecureNamespace is folded into SchemaNamespace on merge.
	SchemaSecureNamespace = "https://schema.org/"
)

const (
	RDFType       = RDFNamespace + "type"
	RDFLangString = RDFNamespace + "langString"
	RDFHTML       = RDFNamespace + "HTML"
	RDFXMLLiteral = RDFNamespace + "XMLLiteral"

	XSDString   = XSDNamespace + "string"
	XSDBoolean  = XSDNamespace + "boolean"
	XSDDate     = XSDNamespace + "date"
	XSDDateTime = XSDNamespace + "dateTime"
	XSDDecimal  = XSDNamespace + "decimal"
	XSDDouble   = XSDNamespace + "double"
	XSDFloat    = XSDNamespace + "float"
	XSDInteger  = XSDNamespace + "integer"
	XSDInt      = XSDNamespace + "int"
	XSDLong     = XSDNamespace + "long"
)

const (
	SchemaBlogPosting   = SchemaNamespace + "BlogPosting"
	SchemaName          = SchemaNamespace + "name"
	SchemaDescription   = SchemaNamespace + "description"
	SchemaDatePublished = SchemaNamespace + "datePublished"
	SchemaAuthor        = SchemaNamespace + "author"
	SchemaEmail         = SchemaNamespace + "email"
	SchemaKeywords      = SchemaNamespace + "keywords"
)

var (
	Type          = NewIRI(RDFType)
	BlogPosting   = NewIRI(SchemaBlogPosting)
	Name          = NewIRI(SchemaName)
	Description   = NewIRI(SchemaDescription)
	DatePublished = NewIRI(SchemaDatePublished)
	Author        = NewIRI(SchemaAuthor)
	Email         = NewIRI(SchemaEmail)
	Keywords      = NewIRI(SchemaKeywords)
)
