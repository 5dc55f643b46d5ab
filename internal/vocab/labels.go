package vocab

var genreLabels = []string{
	"Landscape", "Portrait", "Street Photography", "Macro", "Bird",
	"Wildlife", "Architecture", "Abstract", "Night", "Astro",
}

var contentLabels = []string{
	"dog", "cat", "tree", "mountain", "beach", "snow", "water",
	"sun", "cloud", "forest", "road", "sky", "sunset",
}

var streetLabels = []string{
	"neon", "shadows", "reflection", "silhouette", "bus", "taxi",
	"bicycle", "subway", "train", "crowd", "umbrella", "rain",
	"night life", "urban geometry", "graffiti", "street art",
	"facade", "window", "concrete", "alley",
}

var birdLabels = []string{
	"Eagle", "Hawk", "Falcon", "Owl", "Sparrow", "Robin", "Blue Tit",
	"Great Tit", "Starling", "Blackbird", "Pigeon", "Dove", "Magpie",
	"Crow", "Raven", "Seagull", "Heron", "Stork", "Swan", "Duck",
	"Goose", "Pelican", "Kingfisher", "Woodpecker", "Parrot",
	"Flamingo", "Penguin", "Hummingbird", "Finches", "Swallow",
}

var insectLabels = []string{
	"Butterfly", "Moth", "Bee", "Wasp", "Ant", "Fly", "Dragonfly",
	"Damselfly", "Beetle", "Ladybug", "Spider", "Grasshopper",
	"Cricket", "Mantis", "Caterpillar", "Snail", "Slug", "Mosquito",
}
