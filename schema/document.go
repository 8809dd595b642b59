package schema

const (
	docMetaDataKeyScore       = "_score"
	docMetaDataKeyCitation    = "_citation"
	docMetaDataKeySource      = "_source"
	docMetaDataKeyDenseVector = "_dense_vector"
)

// Document 检索与索引共用的文档结构：向量检索命中、加载器产出的分块都用它表示。
type Document struct {
	// ID 文档的唯一标识
	ID string `json:"id"`

	// Content 文本内容
	Content string `json:"content"`

	// MetaData 评分、引用、向量等附加信息
	MetaData map[string]any `json:"meta_data"`
}

// String 返回文档内容。
func (d *Document) String() string {
	return d.Content
}

func (d *Document) set(key string, v any) *Document {
	if d.MetaData == nil {
		d.MetaData = make(map[string]any)
	}
	d.MetaData[key] = v
	return d
}

// WithScore 设置检索得分。距离类度量越小越相近，相似度类度量越大越相近。
func (d *Document) WithScore(score float64) *Document {
	return d.set(docMetaDataKeyScore, score)
}

// Score 返回检索得分，未设置时为 0。
func (d *Document) Score() float64 {
	score, _ := d.MetaData[docMetaDataKeyScore].(float64)
	return score
}

// WithCitation 设置引用信息，拼接上下文时序列化为 "Citation: {json}"。
func (d *Document) WithCitation(citation map[string]any) *Document {
	return d.set(docMetaDataKeyCitation, citation)
}

// Citation 返回引用信息。
func (d *Document) Citation() map[string]any {
	citation, _ := d.MetaData[docMetaDataKeyCitation].(map[string]any)
	return citation
}

// WithSource 设置文档来源，例如文件路径或数据源名称。
func (d *Document) WithSource(source string) *Document {
	return d.set(docMetaDataKeySource, source)
}

// Source 返回文档来源。
func (d *Document) Source() string {
	source, _ := d.MetaData[docMetaDataKeySource].(string)
	return source
}

// WithDenseVector 设置文档的稠密向量。
func (d *Document) WithDenseVector(vector []float64) *Document {
	return d.set(docMetaDataKeyDenseVector, vector)
}

// DenseVector 返回文档的稠密向量。
func (d *Document) DenseVector() []float64 {
	vector, _ := d.MetaData[docMetaDataKeyDenseVector].([]float64)
	return vector
}
