package domain

// HashOutput carries the identifiers of a normalized name
// swagger:model
// LabelHash hashes the whole normalized name, exactly what the labelhash scheme submits.
// For a dotted name it is not the hash of the first label
type HashOutput struct {
	Input     string `json:"input"     example:"Foo.eth"`
	Name      string `json:"name"      example:"foo"`
	Full      string `json:"full"      example:"foo.eth"`
	LabelHash string `json:"labelhash" example:"0x41b1a0649752af1b28b3dc29a1556eee781e4a4c3a1f7f53f90fa834de098c4d"`
	NameHash  string `json:"namehash"  example:"0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"`
	Scheme    Scheme `json:"scheme"    example:"labelhash"`
	ID        string `json:"id"        example:"0x41b1a0649752af1b28b3dc29a1556eee781e4a4c3a1f7f53f90fa834de098c4d"`
}

// ResolveInput is a synchronous classification request
type ResolveInput struct {
	Names []string `json:"names" validate:"required,min=1,dive,max=512"`
}

// ResolveOutput is the classification of a request plus its diagnostics
// swagger:model
type ResolveOutput struct {
	RunID     string          `json:"run_id"   example:"3f0c2a8e-3c1b-4a53-9d7e-0c1d2e3f4a5b"`
	Result    Result          `json:"result"`
	Failures  []StoredFailure `json:"failures"`
	Persisted bool            `json:"persisted" example:"false"`
}
