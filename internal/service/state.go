package service

// State is where an order's polling task stands.
type State string

const (
	WaitingState           State = "WAITING"
	CodeDeliveredState     State = "CODE_DELIVERED"
	UserFinishedState      State = "USER_FINISHED"
	UserCancelledState     State = "USER_CANCELLED"
	ReportedState          State = "REPORTED"
	SupplierCancelledState State = "SUPPLIER_CANCELLED"
	TimedOutNoCodeState    State = "TIMED_OUT_NO_CODE"
	TimedOutWithCodeState  State = "TIMED_OUT_WITH_CODE"
)

func (state State) IsTerminal() bool {
	return state != WaitingState && state != CodeDeliveredState
}

// Action is a requester command relayed by the front-end.
type Action string

const (
	FinishAction Action = "finish"
	RetryAction  Action = "retry"
	CancelAction Action = "cancel"
	ReportAction Action = "report"
)

var actionOrder = []Action{FinishAction, RetryAction, CancelAction, ReportAction}

// transitions is the only place that decides which action is legal in which
// state. CODE_DELIVERED is kept while the requester waits for another code,
// so a delivered code forecloses cancel and report for good.
var transitions = map[State]map[Action]bool{
	WaitingState: {
		CancelAction: true,
		ReportAction: true,
	},
	CodeDeliveredState: {
		FinishAction: true,
		RetryAction:  true,
	},
}

func ParseAction(value string) (Action, bool) {
	for _, action := range actionOrder {
		if string(action) == value {
			return action, true
		}
	}
	return "", false
}

func Allowed(state State, action Action) bool {
	return transitions[state][action]
}

// AllowedActions lists what the front-end should offer in state.
func AllowedActions(state State) []string {
	actions := []string{}
	for _, action := range actionOrder {
		if Allowed(state, action) {
			actions = append(actions, string(action))
		}
	}
	return actions
}
