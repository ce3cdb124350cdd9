// 指示: miu200521358
package gltf

// gltfDocument はスケルトン読込に必要なglTFトップレベル要素を表す。
type gltfDocument struct {
	Asset       gltfAsset        `json:"asset"`
	Buffers     []gltfBuffer     `json:"buffers"`
	BufferViews []gltfBufferView `json:"bufferViews"`
	Accessors   []gltfAccessor   `json:"accessors"`
	Meshes      []gltfMesh       `json:"meshes"`
	Skins       []gltfSkin       `json:"skins"`
	Nodes       []gltfNode       `json:"nodes"`
	Animations  []gltfAnimation  `json:"animations"`
	Scenes      []gltfScene      `json:"scenes"`
	Scene       int              `json:"scene"`
}

// gltfAsset はglTF asset要素を表す。
type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

// gltfScene はglTF scene要素を表す。
type gltfScene struct {
	Name  string `json:"name"`
	Nodes []int  `json:"nodes"`
}

// gltfNode はglTF node要素を表す。
type gltfNode struct {
	Name        string    `json:"name"`
	Mesh        *int      `json:"mesh"`
	Skin        *int      `json:"skin"`
	Children    []int     `json:"children"`
	Matrix      []float64 `json:"matrix"`
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
	Scale       []float64 `json:"scale"`
}

// gltfBuffer はglTF buffer要素を表す。
type gltfBuffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

// gltfBufferView はglTF bufferView要素を表す。
type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

// gltfAccessor はglTF accessor要素を表す。
type gltfAccessor struct {
	BufferView    *int   `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
	Normalized    bool   `json:"normalized"`
}

// gltfMesh はglTF mesh要素を表す。
type gltfMesh struct {
	Name string `json:"name"`
}

// gltfSkin はglTF skin要素を表す。
type gltfSkin struct {
	Name     string `json:"name"`
	Joints   []int  `json:"joints"`
	Skeleton *int   `json:"skeleton"`
}

// gltfAnimation はglTF animation要素を表す。
type gltfAnimation struct {
	Name     string                 `json:"name"`
	Channels []gltfAnimationChannel `json:"channels"`
	Samplers []gltfAnimationSampler `json:"samplers"`
}

// gltfAnimationChannel はglTF animation.channel要素を表す。
type gltfAnimationChannel struct {
	Sampler int                        `json:"sampler"`
	Target  gltfAnimationChannelTarget `json:"target"`
}

// gltfAnimationChannelTarget はチャンネルの適用先を表す。
type gltfAnimationChannelTarget struct {
	Node *int   `json:"node"`
	Path string `json:"path"`
}

// gltfAnimationSampler はglTF animation.sampler要素を表す。
type gltfAnimationSampler struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	Interpolation string `json:"interpolation"`
}
