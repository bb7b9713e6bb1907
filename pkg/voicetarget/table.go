package voicetarget

// Entry maps a spoken phrase to a detector class.
type Entry struct {
	Phrase string
	Class  string
}

// DefaultTable is the synonym table in priority order: when several entries
// match a transcript, the earliest wins.
var DefaultTable = []Entry{
	// clear target
	{"any", Any},
	{"all", Any},
	{"everything", Any},
	{"clear", Any},

	// people and animals
	{"person", "person"},
	{"people", "person"},
	{"human", "person"},
	{"man", "person"},
	{"woman", "person"},
	{"cat", "cat"},
	{"kitten", "cat"},
	{"dog", "dog"},
	{"puppy", "dog"},
	{"bird", "bird"},
	{"horse", "horse"},
	{"cow", "cow"},
	{"sheep", "sheep"},

	// vehicles
	{"car", "car"},
	{"vehicle", "car"},
	{"automobile", "car"},
	{"bicycle", "bicycle"},
	{"bike", "bicycle"},
	{"motorcycle", "motorcycle"},
	{"motorbike", "motorcycle"},
	{"bus", "bus"},
	{"truck", "truck"},
	{"train", "train"},
	{"boat", "boat"},
	{"ship", "boat"},
	{"airplane", "airplane"},
	{"plane", "airplane"},
	{"aircraft", "airplane"},

	// furniture
	{"chair", "chair"},
	{"seat", "chair"},
	{"couch", "couch"},
	{"sofa", "couch"},
	{"bed", "bed"},
	{"dining table", "dining table"},
	{"table", "dining table"},
	{"bench", "bench"},

	// electronics
	{"phone", "cell phone"},
	{"mobile", "cell phone"},
	{"cell phone", "cell phone"},
	{"smartphone", "cell phone"},
	{"laptop", "laptop"},
	{"computer", "laptop"},
	{"tv", "tv"},
	{"television", "tv"},
	{"remote", "remote"},
	{"remote control", "remote"},
	{"keyboard", "keyboard"},
	{"mouse", "mouse"},
	{"clock", "clock"},
	{"watch", "clock"},

	// kitchen
	{"bottle", "bottle"},
	{"cup", "cup"},
	{"mug", "cup"},
	{"bowl", "bowl"},
	{"fork", "fork"},
	{"knife", "knife"},
	{"spoon", "spoon"},
	{"microwave", "microwave"},
	{"oven", "oven"},
	{"toaster", "toaster"},
	{"refrigerator", "refrigerator"},
	{"fridge", "refrigerator"},
	{"sink", "sink"},

	// food and drink
	{"apple", "apple"},
	{"banana", "banana"},
	{"orange", "orange"},
	{"sandwich", "sandwich"},
	{"pizza", "pizza"},
	{"hot dog", "hot dog"},
	{"cake", "cake"},
	{"donut", "donut"},
	{"doughnut", "donut"},
	{"wine glass", "wine glass"},
	{"wine", "wine glass"},

	// personal items
	{"backpack", "backpack"},
	{"bag", "backpack"},
	{"handbag", "handbag"},
	{"purse", "handbag"},
	{"suitcase", "suitcase"},
	{"luggage", "suitcase"},
	{"umbrella", "umbrella"},
	{"tie", "tie"},
	{"book", "book"},
	{"scissors", "scissors"},
	{"toothbrush", "toothbrush"},
	{"hair drier", "hair drier"},
	{"hair dryer", "hair drier"},
	{"hairdryer", "hair drier"},

	// sports
	{"sports ball", "sports ball"},
	{"ball", "sports ball"},
	{"baseball bat", "baseball bat"},
	{"bat", "baseball bat"},
	{"baseball glove", "baseball glove"},
	{"glove", "baseball glove"},
	{"tennis racket", "tennis racket"},
	{"racket", "tennis racket"},
	{"skateboard", "skateboard"},
	{"surfboard", "surfboard"},
	{"skis", "skis"},
	{"ski", "skis"},
	{"snowboard", "snowboard"},
	{"kite", "kite"},
	{"frisbee", "frisbee"},

	// other
	{"door", "door"},
	{"traffic light", "traffic light"},
	{"stop sign", "stop sign"},
	{"sign", "stop sign"},
	{"fire hydrant", "fire hydrant"},
	{"hydrant", "fire hydrant"},
	{"parking meter", "parking meter"},
	{"meter", "parking meter"},
	{"potted plant", "potted plant"},
	{"plant", "potted plant"},
	{"toilet", "toilet"},
	{"vase", "vase"},
	{"teddy bear", "teddy bear"},
	{"teddy", "teddy bear"},
	{"bear", "teddy bear"},
}
