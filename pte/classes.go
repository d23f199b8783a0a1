package pte

// Foreign class names used by the wrappers.
const (
	classProvider     = "de/schildbach/pte/NetworkProvider"
	classCapability   = "de/schildbach/pte/NetworkProvider$Capability"
	classOptimize     = "de/schildbach/pte/NetworkProvider$Optimize"
	classWalkSpeed    = "de/schildbach/pte/NetworkProvider$WalkSpeed"
	classAccess       = "de/schildbach/pte/NetworkProvider$Accessibility"
	classTripFlag     = "de/schildbach/pte/NetworkProvider$TripFlag"
	classLocation     = "de/schildbach/pte/dto/Location"
	classLocationType = "de/schildbach/pte/dto/LocationType"
	classPoint        = "de/schildbach/pte/dto/Point"
	classProduct      = "de/schildbach/pte/dto/Product"
	classLine         = "de/schildbach/pte/dto/Line"
	classLineAttr     = "de/schildbach/pte/dto/Line$Attr"
	classStyle        = "de/schildbach/pte/dto/Style"
	classShape        = "de/schildbach/pte/dto/Style$Shape"
	classPosition     = "de/schildbach/pte/dto/Position"
	classStop         = "de/schildbach/pte/dto/Stop"
	classDeparture    = "de/schildbach/pte/dto/Departure"
	classStationDeps  = "de/schildbach/pte/dto/StationDepartures"
	classLineDest     = "de/schildbach/pte/dto/LineDestination"
	classFare         = "de/schildbach/pte/dto/Fare"
	classFareType     = "de/schildbach/pte/dto/Fare$Type"
	classTrip         = "de/schildbach/pte/dto/Trip"
	classLeg          = "de/schildbach/pte/dto/Trip$Leg"
	classIndividual   = "de/schildbach/pte/dto/Trip$Individual"
	classIndivType    = "de/schildbach/pte/dto/Trip$Individual$Type"
	classPublic       = "de/schildbach/pte/dto/Trip$Public"
	classTripOptions  = "de/schildbach/pte/dto/TripOptions"
	classTripsContext = "de/schildbach/pte/dto/QueryTripsContext"
	classDeparturesRs = "de/schildbach/pte/dto/QueryDeparturesResult"
	classTripsRs      = "de/schildbach/pte/dto/QueryTripsResult"
	classNearbyRs     = "de/schildbach/pte/dto/NearbyLocationsResult"
	classSuggestRs    = "de/schildbach/pte/dto/SuggestLocationsResult"
)

// Descriptors of the java.* types the wrappers exchange.
const (
	sigString = "Ljava/lang/String;"
	sigDate   = "Ljava/util/Date;"
	sigList   = "Ljava/util/List;"
	sigSet    = "Ljava/util/Set;"
)
