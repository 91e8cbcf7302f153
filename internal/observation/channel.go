package observation

// Channel identifies one imaging channel of the five-dye painting panel.
type Channel int

const (
	ChannelDNA Channel = iota
	ChannelER
	ChannelRNA
	ChannelAGP
	ChannelMito
	channelCount
)

// ChannelCount is the number of imaging channels.
const ChannelCount = int(channelCount)

var channelNames = [...]string{"dna", "er", "rna", "agp", "mito"}

func (c Channel) String() string {
	if c < 0 || int(c) >= ChannelCount {
		return "unknown"
	}
	return channelNames[c]
}

// ParseChannel maps a channel name to its Channel, reporting ok=false for
// unknown names.
func ParseChannel(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// Channels returns all channels in fixed order. The order is part of the
// deterministic draw sequence and must not change between releases.
func Channels() []Channel {
	return []Channel{ChannelDNA, ChannelER, ChannelRNA, ChannelAGP, ChannelMito}
}

// Vector holds one value per imaging channel, indexed by Channel.
type Vector [ChannelCount]float64

// Uniform returns a vector with every component set to x.
func Uniform(x float64) Vector {
	var v Vector
	for i := range v {
		v[i] = x
	}
	return v
}

// Scale returns v with every component multiplied by f.
func (v Vector) Scale(f float64) Vector {
	for i := range v {
		v[i] *= f
	}
	return v
}

// Mul returns the componentwise product of v and w.
func (v Vector) Mul(w Vector) Vector {
	for i := range v {
		v[i] *= w[i]
	}
	return v
}

// Mean returns the arithmetic mean of the components.
func (v Vector) Mean() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(ChannelCount)
}
