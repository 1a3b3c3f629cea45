package pubmed

// esearchResponse is the JSON envelope returned by esearch.fcgi.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count    string   `json:"count"`
	IDList   []string `json:"idlist"`
	WebEnv   string   `json:"webenv"`
	QueryKey string   `json:"querykey"`
}

// SearchResult holds the outcome of an esearch call: the ordered PMID
// list plus the history-server token pair that a later fetch may use
// in place of explicit ids.
type SearchResult struct {
	IDs      []string
	WebEnv   string
	QueryKey string
}

// The types below mirror the slice of the efetch XML payload the
// mapper reads. Anything upstream adds beyond these fields is ignored.

type fetchResponse struct {
	Articles []rawArticle `xml:"PubmedArticle"`
}

type rawArticle struct {
	Citation rawCitation `xml:"MedlineCitation"`
}

type rawCitation struct {
	PMID         string       `xml:"PMID"`
	Article      rawDetails   `xml:"Article"`
	MeshHeadings []rawMesh    `xml:"MeshHeadingList>MeshHeading"`
	Keywords     []rawKeyword `xml:"KeywordList>Keyword"`
}

type rawDetails struct {
	Title    string      `xml:"ArticleTitle"`
	Abstract rawAbstract `xml:"Abstract"`
	Authors  []rawAuthor `xml:"AuthorList>Author"`
	Journal  rawJournal  `xml:"Journal"`
}

// rawAbstract covers the three upstream abstract shapes: a single
// unlabeled section, a single labeled section, and multiple sections.
// All three arrive here as a slice of AbstractText elements.
type rawAbstract struct {
	Sections  []rawAbstractText `xml:"AbstractText"`
	Copyright string            `xml:"CopyrightInformation"`
}

type rawAbstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

type rawAuthor struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	CollectiveName string `xml:"CollectiveName"`
}

type rawJournal struct {
	Title string   `xml:"Title"`
	Issue rawIssue `xml:"JournalIssue"`
}

type rawIssue struct {
	PubDate rawPubDate `xml:"PubDate"`
}

type rawPubDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type rawMesh struct {
	Descriptor string   `xml:"DescriptorName"`
	Qualifiers []string `xml:"QualifierName"`
}

type rawKeyword struct {
	Text string `xml:",chardata"`
}
